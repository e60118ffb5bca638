// Command pyplay is a beginner Python playground: a terminal runner, a
// full-screen editor and an HTTP service over the same workspace.
package main

func main() {
	Execute()
}
