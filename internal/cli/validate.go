package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pushopen/internal/config"
)

// ValidationResult is the printed outcome of validate.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Path   string         `json:"path"`
	Config *config.Config `json:"config,omitempty"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	if r.Config == nil {
		return fmt.Sprintf("✓ %s is valid", r.Path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s is valid\n", r.Path)
	fmt.Fprintf(&b, "  package:       %s\n", r.Config.PackageName)
	fmt.Fprintf(&b, "  payload key:   %s\n", r.Config.PayloadKey)
	fmt.Fprintf(&b, "  deeplink keys: %s\n", strings.Join(r.Config.DeepLinkKeys, ", "))
	fmt.Fprintf(&b, "  event name:    %s", r.Config.EventName)
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a pipeline config file",
		Long: `Validate a pipeline config file against the embedded schema.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Validating %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			if ferr := formatter.Error(ErrCodeInvalidConfig, err.Error(), nil); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitFailure, "invalid config", err)
		}
		if ferr := formatter.Error(ErrCodeNotFound, err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitCommandError, "cannot read config", err)
	}

	return formatter.Success(ValidationResult{Valid: true, Path: path, Config: cfg})
}
