// Lookout - cross-region cloud instance inventory and watched metrics.
package main

func main() {
	Execute()
}
