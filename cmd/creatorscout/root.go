package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/creatorscout/internal/config"
)

var envName string

var rootCmd = &cobra.Command{
	Use:   "creatorscout",
	Short: "Influencer discovery and ranking",
	Long: `creatorscout discovers Instagram and TikTok creators for a topic,
ranks them by engagement and keeps a cache of crawled profiles.

Configuration is read from config/<env>.yaml; ENV selects the file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(),
		"configuration environment (local, dev, prod)")
}
