package logger

import (
	"log"
	"os"
)

var (
	// InfoLogger general information log
	InfoLogger *log.Logger

	// ErrorLogger error log
	ErrorLogger *log.Logger
)

// Init sets up the package loggers
func Init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}
