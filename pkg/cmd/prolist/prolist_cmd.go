package prolist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/pkg/config"
	"github.com/racemates/racemates-go/pkg/prolist"
)

func NewProListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prolist",
		Short: "maintains the cached pro driver list",
	}
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newShowCmd())
	return cmd
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "forces a refresh of the pro driver list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "prints the cached pro driver list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow()
		},
	}
}

func runRefresh() error {
	fetchTimeout := config.ParseDuration(config.FetchTimeout, 10*time.Second)
	cache := prolist.New(
		prolist.WithFetcher(prolist.NewHTTPFetcher(config.ProListURL, fetchTimeout)),
		prolist.WithCacheFile(config.ResolveCacheFile(config.CacheDir)),
	)
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	// a failed fetch is not fatal; the overlay keeps serving the cached list
	if err := cache.Refresh(ctx, true); err != nil {
		log.Warn("refresh failed, cached list kept", log.ErrorField(err))
		return nil
	}
	fmt.Printf("pro driver list refreshed: %d entries\n", len(cache.Get().Records))
	return nil
}

func runShow() error {
	cache := prolist.New(
		prolist.WithCacheFile(config.ResolveCacheFile(config.CacheDir)),
	)
	list := cache.Get()
	if len(list.Records) == 0 {
		fmt.Println("no cached pro driver list")
		return nil
	}
	ids := make([]int, 0, len(list.Records))
	for id := range list.Records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fmt.Printf("%d entries, fetched %s\n",
		len(list.Records), list.FetchedAt.Format(time.RFC3339))
	for _, id := range ids {
		rec := list.Records[id]
		fmt.Printf("%8d  %-30s %s\n", rec.ID, rec.Name, rec.Description)
	}
	return nil
}
