// Command blockcheck validates stored content documents and FAQ categories
// offline, the same way the console does before a save.
package main

func main() {
	Execute()
}
