// Command intentctl prints the intent aggregation in the terminal and follows
// degraded-feed events.
package main

func main() {
	Execute()
}
