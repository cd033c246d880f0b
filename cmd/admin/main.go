// Command admin is the content console for the portfolio API: login,
// sections, gigs, the press kit, sets, singleton blocks, tech collections
// and media.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/utworld/internal/apiclient"
	"github.com/aTrapDeer/utworld/internal/config"
	"github.com/aTrapDeer/utworld/internal/logging"
	"github.com/aTrapDeer/utworld/internal/sections"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

func init() {
	config.LoadDotenv()
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// app is the state shared by every command. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	out         io.Writer
	logger      *slog.Logger
	profilePath string
	apiURL      string
	verbose     bool

	cfg      *config.Client
	profile  *config.Profile
	client   *apiclient.Client
	registry *sections.Registry
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage portfolio content through the admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.profilePath, "profile", "", "profile file (default ~/.config/utworld/admin.yaml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL, overrides the environment and profile")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log API requests")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.sectionsCmd(),
		a.gigsCmd(),
		a.pressKitCmd(),
		a.setsCmd(),
		a.blockCmd(),
		a.collectionCmd(),
		a.featuredCmd(),
		a.assetsCmd(),
		a.dashboardCmd(),
	)
	return root
}

func (a *app) setup() error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.New(os.Stderr, "development", level)

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.profilePath == "" {
		if a.profilePath, err = config.DefaultProfilePath(); err != nil {
			return err
		}
	}
	profile, err := config.LoadProfile(a.profilePath)
	if err != nil {
		return err
	}
	_, envURL := os.LookupEnv("REACT_APP_API_URL")
	profile.Apply(cfg, envURL, filepath.Dir(a.profilePath))
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}

	session := apiclient.NewSession(apiclient.FileTokenStore{Path: cfg.TokenFile})
	if err := session.Hydrate(); err != nil {
		return fmt.Errorf("loading tokens: %w", err)
	}
	a.cfg = cfg
	a.profile = profile
	a.client = apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithSession(session),
		apiclient.WithLogger(a.logger),
	)
	a.logger.Debug("admin client ready", "api_url", a.client.BaseURL(), "token_file", cfg.TokenFile)
	return nil
}

// sections loads the section registry on first use.
func (a *app) sections(ctx context.Context) (*sections.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	reg := sections.NewRegistry(a.client, a.logger)
	if err := reg.Load(ctx); err != nil {
		return nil, err
	}
	a.registry = reg
	return reg, nil
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s%s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
}

// readJSONFile decodes path into v. "-" reads stdin.
func readJSONFile(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
