// Package cli implements the leaderboard command line client on top of the
// HTTP SDK.
package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/sdk"
)

var (
	DefTLSVerification = false
	DefServerURL       = "http://localhost:7070"
)

var lsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	lsdk = s
}

var (
	searchQuery string
	typeFilter  []string
	precFilter  []string
	sizeFilter  []string
	hideMerges  bool
	hideMoE     bool
	hideFlagged bool
)

func NewLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show leaderboard",
		Long: `Show the leaderboard with optional search and filters.

Examples:
  # Full leaderboard
  leaderboard-cli board

  # Search by name and license
  leaderboard-cli board --search "mistral; license: apache"

  # Only chat models between 3B and 13B
  leaderboard-cli board --types chat --sizes 3B-7B,7B-13B`,
		Run: func(cmd *cobra.Command, _ []string) {
			table, err := lsdk.Leaderboard(sdk.LeaderboardQuery{
				Search:      searchQuery,
				Types:       typeFilter,
				Precisions:  precFilter,
				Sizes:       sizeFilter,
				HideMerges:  hideMerges,
				HideMoE:     hideMoE,
				HideFlagged: hideFlagged,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, table)
		},
	}

	cmd.Flags().StringVarP(&searchQuery, "search", "s", "", `Search query, e.g. "mistral; license: apache"`)
	cmd.Flags().StringSliceVar(&typeFilter, "types", nil, "Model types to keep")
	cmd.Flags().StringSliceVar(&precFilter, "precisions", nil, "Precisions to keep")
	cmd.Flags().StringSliceVar(&sizeFilter, "sizes", nil, "Size buckets to keep")
	cmd.Flags().BoolVar(&hideMerges, "hide-merges", false, "Hide merged models")
	cmd.Flags().BoolVar(&hideMoE, "hide-moe", false, "Hide mixture of experts models")
	cmd.Flags().BoolVar(&hideFlagged, "hide-flagged", false, "Hide flagged models")

	return cmd
}

func NewQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show evaluation queue",
		Long:  `Show pending, running and finished evaluation requests.`,
		Run: func(cmd *cobra.Command, _ []string) {
			view, err := lsdk.EvalQueue()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, view)
		},
	}
}

var submitFlags sdk.Submission

func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit model for evaluation",
		Long: `Submit a model for evaluation. Without flags an interactive form
collects the submission fields.`,
		Run: func(cmd *cobra.Command, _ []string) {
			sub := submitFlags
			if sub.Model == "" {
				if err := runSubmitForm(&sub); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
			}

			res, err := lsdk.Submit(sub)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, res.Message)
			logJSONCmd(*cmd, res.QueueEntry)
		},
	}

	cmd.Flags().StringVar(&submitFlags.Model, "model", "", "Model identifier, org/name")
	cmd.Flags().StringVar(&submitFlags.BaseModel, "base-model", "", "Base model for delta or adapter weights")
	cmd.Flags().StringVar(&submitFlags.Revision, "revision", "", "Revision, defaults to main")
	cmd.Flags().StringVar(&submitFlags.Precision, "precision", "bfloat16", "Evaluation precision")
	cmd.Flags().StringVar(&submitFlags.WeightType, "weight-type", "Original", "Weight type: Original, Delta or Adapter")
	cmd.Flags().StringVar(&submitFlags.ModelType, "model-type", "", "Model type")
	cmd.Flags().BoolVar(&submitFlags.UseChatTemplate, "chat-template", false, "Evaluate with the chat template")
	cmd.Flags().StringVar(&submitFlags.Sender, "sender", "", "Submitter username")

	return cmd
}

func runSubmitForm(sub *sdk.Submission) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Hub identifier, org/name").
				Placeholder("org/model").
				Value(&sub.Model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("model is required")
					}

					return nil
				}),
			huh.NewInput().
				Title("Revision").
				Description("Commit or branch, empty for main").
				Value(&sub.Revision),
			huh.NewSelect[string]().
				Title("Precision").
				Options(
					huh.NewOption("float16", "float16"),
					huh.NewOption("bfloat16", "bfloat16"),
					huh.NewOption("8bit", "8bit"),
					huh.NewOption("4bit", "4bit"),
					huh.NewOption("GPTQ", "GPTQ"),
				).
				Value(&sub.Precision),
			huh.NewSelect[string]().
				Title("Model type").
				Options(
					huh.NewOption("pretrained", "pretrained"),
					huh.NewOption("continuously-pretrained", "continuously-pretrained"),
					huh.NewOption("fine-tuned", "fine-tuned"),
					huh.NewOption("chat", "chat"),
					huh.NewOption("merge", "merge"),
					huh.NewOption("multimodal", "multimodal"),
				).
				Value(&sub.ModelType),
			huh.NewSelect[string]().
				Title("Weight type").
				Options(
					huh.NewOption("Original", "Original"),
					huh.NewOption("Delta", "Delta"),
					huh.NewOption("Adapter", "Adapter"),
				).
				Value(&sub.WeightType),
			huh.NewInput().
				Title("Base model").
				Description("Required for Delta and Adapter weights").
				Value(&sub.BaseModel),
			huh.NewConfirm().
				Title("Use chat template?").
				Value(&sub.UseChatTemplate),
			huh.NewInput().
				Title("Username").
				Description("Your hub username").
				Value(&sub.Sender).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}

					return nil
				}),
		),
	)

	return form.Run()
}

func NewVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <model> <username>",
		Short: "Vote for a queued model",
		Long:  `Cast one vote for a pending submission.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			res, err := lsdk.Vote(args[0], args[1])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}
}
