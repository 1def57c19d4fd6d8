package utils

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const envFilename = ".env"

// InitEnvironmentVariables loads credentials from a local .env file when one
// exists. Deployed environments set real environment variables instead.
func InitEnvironmentVariables() error {
	if _, err := os.Stat(envFilename); os.IsNotExist(err) {
		log.Debugf("no %s file found, using process environment", envFilename)
		return nil
	}

	if err := godotenv.Load(envFilename); err != nil {
		return err
	}

	return nil
}
