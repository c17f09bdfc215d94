package main

func main() {
	gui := NewConverterGUI()
	gui.Run()
}
