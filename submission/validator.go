package submission

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
)

// minCardLength is the shortest model card body accepted, in characters.
const minCardLength = 200

// fp16SizeCap is the parameter cap in billions for half-precision weights.
// Quantized submissions get quantizedSizeBase times their compression factor.
const (
	fp16SizeCap       = 100.0
	quantizedSizeBase = 140.0
)

// sizePattern extracts a parameter count from a model identifier, e.g.
// "mistral-7b" or "pythia-160m", when the hub has no tensor metadata.
var sizePattern = regexp.MustCompile(`(\d+(\.\d+)?)([bm])`)

// Rejection is an expected, user-facing validation outcome. It is an error so
// it travels the usual return path, but handlers render Reason directly and
// never log it as a failure.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a validation rejection rather than an
// internal failure.
func IsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}

	return nil, false
}

// Request is one submission as received from the form or the API.
type Request struct {
	Model           string           `json:"model"`
	BaseModel       string           `json:"base_model"`
	Revision        string           `json:"revision"`
	Precision       model.Precision  `json:"precision"`
	WeightType      model.WeightType `json:"weight_type"`
	ModelType       string           `json:"model_type"`
	UseChatTemplate bool             `json:"use_chat_template"`
	Sender          string           `json:"sender"`
}

// Validator runs the submission checks in order and short-circuits on the
// first failure. Every failure is a Rejection with a distinct reason.
type Validator struct {
	registry registry.Registry
	limiter  *RateLimiter
	denied   map[string]struct{}
}

func NewValidator(reg registry.Registry, limiter *RateLimiter, models config.Models) *Validator {
	denied := make(map[string]struct{}, len(models.DoNotSubmit))
	for _, m := range models.DoNotSubmit {
		denied[m] = struct{}{}
	}

	return &Validator{
		registry: reg,
		limiter:  limiter,
		denied:   denied,
	}
}

// Validate checks a request against the queue index and the model registry.
// On success it returns the queue entry to persist, with the revision pinned
// to the resolved commit SHA.
func (v *Validator) Validate(ctx context.Context, req Request, idx *queue.Index, now time.Time) (queue.Entry, error) {
	if req.Sender == "" {
		return queue.Entry{}, reject("please log in before submitting a model")
	}
	if req.ModelType == "" {
		return queue.Entry{}, reject("please select a model type")
	}

	org, _ := model.SplitModelID(req.Model)
	if history := idx.SubmissionDates(org); len(history) > 0 {
		if ok, reason := v.limiter.Allowed(org, history, now); !ok {
			return queue.Entry{}, reject("%s", reason)
		}
	}

	if _, ok := v.denied[req.Model]; ok {
		return queue.Entry{}, reject("model %s was excluded from the leaderboard at its authors' request", req.Model)
	}
	if _, ok := v.denied[req.BaseModel]; ok {
		return queue.Entry{}, reject("base model %s was excluded from the leaderboard at its authors' request", req.BaseModel)
	}

	revision := req.Revision
	if revision == "" {
		revision = "main"
	}
	info, err := v.registry.GetModelInfo(ctx, req.Model, revision)
	if err != nil {
		return queue.Entry{}, reject("could not retrieve model information for %s at revision %s, please check the model identifier", req.Model, revision)
	}
	resolved := info.SHA
	if resolved == "" {
		resolved = revision
	}

	if idx.Has(req.Model, resolved, req.Precision) {
		return queue.Entry{}, reject("model %s at revision %s has already been submitted in precision %s", req.Model, resolved, req.Precision)
	}

	params := v.modelSize(ctx, req)
	limit, err := v.sizeCap(ctx, req)
	if err != nil {
		return queue.Entry{}, err
	}
	if params > limit {
		return queue.Entry{}, reject("model size %.1fB exceeds the %.0fB limit for precision %s", params, limit, req.Precision)
	}

	architectures, err := v.checkWeights(ctx, req, resolved)
	if err != nil {
		return queue.Entry{}, err
	}

	card, err := v.registry.GetCard(ctx, req.Model)
	if err != nil {
		return queue.Entry{}, reject("model %s has no model card, please add one describing your model", req.Model)
	}
	if card.License == "" && !(card.LicenseName != "" && card.LicenseLink != "") {
		return queue.Entry{}, reject("please select a license for your model")
	}
	if len(card.Text) < minCardLength {
		return queue.Entry{}, reject("model card is too short, please describe your model in at least %d characters", minCardLength)
	}

	return queue.Entry{
		Model:           req.Model,
		BaseModel:       req.BaseModel,
		Revision:        resolved,
		Precision:       req.Precision,
		Params:          params,
		Architectures:   architectures,
		WeightType:      req.WeightType,
		Status:          queue.StatusPending,
		SubmittedTime:   model.FormatTime(now),
		ModelType:       req.ModelType,
		UseChatTemplate: req.UseChatTemplate,
		Sender:          req.Sender,
	}, nil
}

// modelSize resolves the parameter count in billions: safetensors metadata
// first, then the size pattern in the identifier. Adapters are evaluated on
// top of their base model, so both weight sets count. GPTQ checkpoints store
// packed weights, so the reported size is multiplied by 8.
func (v *Validator) modelSize(ctx context.Context, req Request) float64 {
	size := v.tensorSize(ctx, req.Model)
	if req.WeightType == model.Adapter {
		size += v.tensorSize(ctx, req.BaseModel)
	}

	if req.Precision == model.GPTQ || strings.Contains(strings.ToLower(req.Model), "gptq") {
		size *= 8
	}

	return size
}

func (v *Validator) tensorSize(ctx context.Context, modelID string) float64 {
	if md, err := v.registry.GetSafetensorsMetadata(ctx, modelID); err == nil && md != nil && md.Total > 0 {
		return float64(md.Total) / 1e9
	}
	if m := sizePattern.FindStringSubmatch(strings.ToLower(modelID)); m != nil {
		size, _ := strconv.ParseFloat(m[1], 64)
		if m[3] == "m" {
			size /= 1000
		}

		return size
	}

	return 0
}

// sizeCap is the precision-dependent parameter limit in billions.
func (v *Validator) sizeCap(ctx context.Context, req Request) (float64, error) {
	switch req.Precision {
	case model.Quant8:
		return quantizedSizeBase * 2, nil
	case model.Quant4:
		return quantizedSizeBase * 4, nil
	case model.GPTQ:
		factor := 1.0
		if cfg, err := v.registry.GetConfig(ctx, req.Model, req.Revision); err == nil {
			switch cfg.QuantizationBits {
			case 2:
				factor = 8
			case 3:
				factor = 6
			case 4:
				factor = 4
			case 8:
				factor = 2
			}
		}

		return quantizedSizeBase * factor, nil
	default:
		return fp16SizeCap, nil
	}
}

// checkWeights verifies that what will actually be loaded at evaluation time
// resolves on the hub, and extracts the architecture list for storage. Gated
// repositories pass; models requiring remote code never do.
func (v *Validator) checkWeights(ctx context.Context, req Request, revision string) (string, error) {
	if req.WeightType == model.Delta || req.WeightType == model.Adapter {
		if _, err := v.registry.GetModelInfo(ctx, req.BaseModel, "main"); err != nil {
			return "", reject("base model %s could not be found on the hub", req.BaseModel)
		}
		tok, err := v.registry.GetTokenizer(ctx, req.BaseModel, "main")
		switch {
		case err == nil:
			if rerr := checkTokenizer(tok, req, req.BaseModel); rerr != nil {
				return "", rerr
			}
		case errors.Is(err, registry.ErrGated):
		default:
			return "", reject("tokenizer of base model %s could not be loaded", req.BaseModel)
		}
	}

	if req.WeightType == model.Adapter {
		return "", nil
	}

	cfg, err := v.registry.GetConfig(ctx, req.Model, revision)
	switch {
	case err == nil:
	case errors.Is(err, registry.ErrRemoteCode):
		return "", reject("model %s requires executing remote code, which is not allowed for security reasons", req.Model)
	case errors.Is(err, registry.ErrGated):
		// Gated repositories are evaluated with an access token later.
	default:
		return "", reject("configuration of model %s could not be loaded at revision %s", req.Model, revision)
	}

	tok, err := v.registry.GetTokenizer(ctx, req.Model, revision)
	switch {
	case err == nil:
		if rerr := checkTokenizer(tok, req, req.Model); rerr != nil {
			return "", rerr
		}
	case errors.Is(err, registry.ErrGated):
	default:
		return "", reject("tokenizer of model %s could not be loaded, make sure it is available from a stable release", req.Model)
	}

	return strings.Join(cfg.Architectures, ";"), nil
}

// checkTokenizer rejects tokenizer configurations that cannot serve an
// evaluation run. modelID names the repository the tokenizer is loaded from,
// which is the base model for adapter and delta weights.
func checkTokenizer(tok registry.TokenizerConfig, req Request, modelID string) error {
	if tok.Class == "" {
		return reject("tokenizer of model %s does not declare a tokenizer class, so it cannot be loaded for evaluation", modelID)
	}
	if req.UseChatTemplate && !tok.HasChatTemplate {
		return reject("use of a chat template was requested, but the tokenizer of %s does not define one", modelID)
	}

	return nil
}
