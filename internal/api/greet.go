package api

import "fmt"

// Greet is the sample command exposed to the UI.
func Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}
