// Command storygen fills placeholder reading-comprehension files with
// generated stories and questions.
//
// Running storygen with no arguments processes every pending file in the
// configured content directory and prints a summary report. The scan,
// history, and config subcommands inspect the content directory, the run
// ledger, and the configuration without calling the text-generation service.
package main
