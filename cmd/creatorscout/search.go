package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/creatorscout/internal/app"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
)

var (
	searchPlatform     string
	searchLocation     string
	searchKeywords     []string
	searchLimit        int
	searchMinFollowers int64
	searchMaxFollowers int64
	searchUser         string
	searchSession      string
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search [topic]",
	Short: "Find creators for a topic",
	Long: `Searches for creators posting about a topic and prints them ranked by
engagement rate. Follower bounds filter instead of ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchPlatform, "platform", "p", string(platform.Instagram), "instagram, tiktok or combined")
	f.StringVarP(&searchLocation, "location", "l", "", "location to bias the search towards")
	f.StringSliceVarP(&searchKeywords, "keyword", "k", nil, "search keyword (repeatable)")
	f.IntVarP(&searchLimit, "limit", "n", 0, "maximum number of creators (0 = configured default)")
	f.Int64Var(&searchMinFollowers, "min-followers", 0, "minimum follower count")
	f.Int64Var(&searchMaxFollowers, "max-followers", 0, "maximum follower count")
	f.StringVar(&searchUser, "user", "", "user id to record the results under")
	f.StringVar(&searchSession, "session", "", "session id to record the results under")
	f.BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	p, err := platform.Parse(searchPlatform)
	if err != nil {
		return err
	}
	ref, err := session.FromRequest(searchUser, searchSession)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Load(ctx, envName)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	res, err := a.Discovery.Search(ctx, discovery.Request{
		Platform:     p,
		Topic:        args[0],
		Location:     searchLocation,
		Keywords:     searchKeywords,
		Limit:        searchLimit,
		MinFollowers: searchMinFollowers,
		MaxFollowers: searchMaxFollowers,
		Session:      ref,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, res.Profiles)
	}
	outputSearchTable(cmd, res.Profiles)
	return nil
}

type creatorJSON struct {
	Platform platform.Platform `json:"platform"`
	profile.AgentView
}

func outputSearchJSON(cmd *cobra.Command, profiles []profile.Profile) error {
	out := make([]creatorJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, creatorJSON{Platform: p.Platform(), AgentView: p.AgentView()})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, profiles []profile.Profile) {
	if len(profiles) == 0 {
		cmd.Println("No creators found.")
		return
	}

	cmd.Println("Creators:")
	cmd.Println()
	for i, p := range profiles {
		// Format: [N] platform/username - followers (engagement)
		rate := "n/a"
		if er := p.EngagementRate(); er != nil {
			rate = fmt.Sprintf("%.2f%%", *er)
		}
		cmd.Printf("  [%d] %s - %d followers, engagement %s\n", i+1, p.Key(), p.Followers(), rate)
		if name := p.Attributes().FullName; name != "" {
			cmd.Printf("      %s\n", name)
		}
	}
}
