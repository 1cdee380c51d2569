// Command pedflow runs pedestrian-flow simulations over scene files
// produced by the editor.
package main

func main() {
	Execute()
}
