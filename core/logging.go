package planner

import (
	"log"
)

// InfoLog logs informational messages with timestamps
func InfoLog(format string, v ...any) {
	log.Printf(format, v...)
}

func ErrorLog(format string, v ...any) {
	log.Printf("[ERROR] "+format, v...)
}
