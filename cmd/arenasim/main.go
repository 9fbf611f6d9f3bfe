// Command arenasim drives a frame arena through a scripted game loop and
// reports how its stacks and pools were used.
package main

func main() {
	execute()
}
