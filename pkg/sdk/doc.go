// Package creatorscout embeds creator discovery in a Go program.
//
// The client wires the same stores and providers as the creatorscout
// server, configured through options instead of a YAML file:
//
//	client, _ := creatorscout.New(ctx,
//	    creatorscout.WithRedis("localhost:6379", ""),
//	    creatorscout.WithEnsemble(os.Getenv("ENSEMBLE_TOKEN")),
//	    creatorscout.WithExa(os.Getenv("EXA_API_KEY")),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, creatorscout.SearchRequest{
//	    Platform: creatorscout.PlatformInstagram,
//	    Topic:    "vegan pastry",
//	    Location: "Lisbon",
//	})
//	for _, c := range res.Creators {
//	    fmt.Println(c.Username, c.Followers, *c.EngagementRate)
//	}
//
// For offline runs, WithSQLite and WithFixtures replace Redis and the live
// providers with a local database file and recorded responses.
package creatorscout
