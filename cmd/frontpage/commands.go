package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/content"
	"github.com/pders01/frontpage/internal/fetchstate"
	"github.com/pders01/frontpage/internal/render"
	"github.com/pders01/frontpage/internal/storage"
	"github.com/pders01/frontpage/internal/topstories"
	"github.com/pders01/frontpage/internal/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
		fmt.Fprintf(cmd.OutOrStdout(), "frontpage %s\n", Version)
		fmt.Fprintln(cmd.OutOrStdout(), "github.com/pders01/frontpage")
	},
}

var configGenCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var configFile string
		if len(args) == 1 {
			configFile = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("locating home directory: %w", err)
			}
			configFile = filepath.Join(home, ".config", "frontpage", "config.toml")
		}

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", configFile)
		return nil
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the sections that can be fetched",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, s := range topstories.Sections() {
			fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Label)
		}
		w.Flush()
	},
}

var (
	storiesSort  string
	storiesLimit int
	storiesJSON  bool
)

var storiesCmd = &cobra.Command{
	Use:   "stories [section]",
	Short: "Fetch and print the top stories of a section",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStories,
}

func init() {
	storiesCmd.Flags().StringVar(&storiesSort, "sort", "", "Sort order: default, newest or oldest")
	storiesCmd.Flags().IntVarP(&storiesLimit, "limit", "n", 0, "Print at most n stories (0 for all)")
	storiesCmd.Flags().BoolVar(&storiesJSON, "json", false, "Print the result as JSON")
}

func runStories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sortFlag := storiesSort
	if sortFlag == "" {
		sortFlag = cfg.UI.DefaultSort
	}
	mode, err := topstories.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}

	section := cfg.API.DefaultSection
	if len(args) == 1 {
		section = args[0]
	}

	tracker := fetchstate.NewTracker(topstories.NewSource(cfg))
	defer tracker.Close()

	state := tracker.Load(section)
	if state.Status == fetchstate.Error {
		return state.Err
	}

	stories := topstories.Sort(state.Stories(), mode)
	if storiesLimit > 0 && len(stories) > storiesLimit {
		stories = stories[:storiesLimit]
	}

	if storiesJSON {
		out := *state.Result
		out.Results = stories
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(&out)
	}

	printStories(cmd.OutOrStdout(), state, stories, time.Now())
	return nil
}

func printStories(w io.Writer, state fetchstate.State, stories []topstories.Story, now time.Time) {
	header := topstories.SectionLabel(state.Section)
	if r := state.Result; r != nil && !r.LastUpdated.IsZero() {
		header += " · updated " + render.RelativeTime(r.LastUpdated.Time, now)
	}
	fmt.Fprintln(w, header)

	if len(stories) == 0 {
		fmt.Fprintln(w, tui.MsgNoStories)
		return
	}
	for i := range stories {
		s := &stories[i]
		fmt.Fprintf(w, "\n%2d. %s\n", i+1, s.Title)
		meta := render.RelativeTime(s.PublishedDate.Time, now)
		if by := render.Byline(s.Byline); by != "" {
			if meta != "" {
				meta += " · "
			}
			meta += by
		}
		if meta != "" {
			fmt.Fprintf(w, "    %s\n", meta)
		}
		if s.URL != "" {
			fmt.Fprintf(w, "    %s\n", s.URL)
		}
	}
}

var (
	showWidth int
	showStyle string
	showRaw   bool
)

var showCmd = &cobra.Command{
	Use:   "show [file|-]",
	Short: "Render a serialized story as the detail view",
	Long: "Reads one story in the top stories JSON format from file, or from stdin " +
		"when file is - or omitted, and prints its detail view.",
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 100, "Terminal width to render for")
	showCmd.Flags().StringVar(&showStyle, "style", "", "Glamour style (dark, light, notty, ...); detected when empty")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without rendering")
}

func runShow(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading story: %w", err)
	}

	story, err := topstories.Decode(data)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Content.HTTPTimeout)
	defer cancel()
	body, err := content.NewDefaultRegistry(cfg).Extract(ctx, story.URL)
	if err != nil {
		body = content.Unavailable(story.URL, err)
	}

	md := render.StoryMarkdown(story, body)
	if showRaw {
		_, err = io.WriteString(cmd.OutOrStdout(), md)
		return err
	}

	r := render.NewRenderer(cfg.UI.Article)
	if showStyle != "" {
		r.WithStyle(showStyle)
	}
	out, err := r.Render(md, showWidth)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently read stories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		marks, err := store.RecentReads(historyLimit)
		if err != nil {
			return err
		}
		if len(marks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stories read yet.")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, m := range marks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", render.RelativeTime(m.ReadAt, now), topstories.SectionLabel(m.Section), m.Title)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to list")
}
