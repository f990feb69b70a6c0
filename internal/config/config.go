package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	ModeHTTP    = "http"
	ModeConsole = "console"
)

type Options struct {
	runAddr     string
	logLevel    string
	dataBaseDSN string
	catalogFile string
	mode        string
	userID      string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	// Load environment variables from the .env file
	loadEnvFile()

	if err := o.ParseArgs(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// ParseArgs registers the options on a fresh flag set, with defaults taken
// from the environment, and parses args into them.
func (o *Options) ParseArgs(args []string) error {
	fs := flag.NewFlagSet("shopbot", flag.ContinueOnError)

	regStringVar(fs, &o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	regStringVar(fs, &o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	regStringVar(fs, &o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string")
	regStringVar(fs, &o.catalogFile, "c", getEnvOrDefault("CATALOG_FILE", ""), "catalog file (yaml, csv, zip or tar)")
	regStringVar(fs, &o.mode, "m", getEnvOrDefault("MODE", ModeHTTP), "run mode: http or console")
	regStringVar(fs, &o.userID, "u", getEnvOrDefault("USER_ID", ""), "user id for the console session")

	// parse the arguments into registered variables
	if err := fs.Parse(args); err != nil {
		return err
	}

	if o.mode != ModeHTTP && o.mode != ModeConsole {
		return fmt.Errorf("unknown mode %q, want %q or %q", o.mode, ModeHTTP, ModeConsole)
	}
	return nil
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) CatalogFile() string {
	return o.catalogFile
}

func (o *Options) Mode() string {
	return o.mode
}

func (o *Options) UserID() string {
	return o.userID
}

func regStringVar(fs *flag.FlagSet, p *string, name string, value string, usage string) {
	fs.StringVar(p, name, value, usage)
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working
// directory or, when run from cmd/shopbot, the repository root.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	for _, envPath := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, "..", "..", ".env"),
	} {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf(".env file loaded from %s", envPath)
			return
		}
	}
	log.Printf("No .env file found, proceeding without it")
}
