package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ronnydonkey/scatterbrain-ai/scatterbrainservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud-dev, cloud)")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before configuration")
	flag.Parse()

	// A missing .env is normal outside local development
	_ = godotenv.Load(*envFile)
	if *buildTarget != "" {
		_ = os.Setenv("SCATTERBRAIN_BUILD_TARGET", *buildTarget)
	}

	if err := scatterbrainservice.Run(); err != nil {
		log.Fatal().Err(err).Msg("scatterbrain service exited")
	}
}
