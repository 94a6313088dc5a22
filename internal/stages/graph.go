package stages

import (
	"fmt"

	"github.com/posterforge/posterforge/internal/pipeline"
)

// Graph assembles and compiles the full poster workflow:
//
//	load_input -> planning -> text_generation <-> text_validation
//	-> image_generation <-> image_validation -> segmentation
//	-> overlay_render <-> overlay_validation -> save_output
//
// Each validation loop is closed by a bounded router using the shared
// retry decision.
func (s *Stages) Graph() (*pipeline.Graph, error) {
	g := pipeline.NewGraph()

	nodes := []pipeline.Stage{
		{Name: StageLoadInput, Run: s.LoadInput},
		{Name: StagePlanning, Run: s.Planning},
		{Name: StageTextGeneration, Run: s.TextGeneration},
		{Name: StageTextValidation, Run: s.TextValidation},
		{Name: StageImageGeneration, Run: s.ImageGeneration},
		{Name: StageImageValidation, Run: s.ImageValidation},
		{Name: StageSegmentation, Run: s.Segmentation},
		{Name: StageOverlayRender, Run: s.OverlayRender},
		{Name: StageOverlayValidation, Run: s.OverlayValidation},
		{Name: StageSaveOutput, Run: s.SaveOutput},
	}
	for _, n := range nodes {
		if err := g.AddStage(n); err != nil {
			return nil, err
		}
	}

	edges := [][2]string{
		{StageLoadInput, StagePlanning},
		{StagePlanning, StageTextGeneration},
		{StageTextGeneration, StageTextValidation},
		{StageImageGeneration, StageImageValidation},
		{StageSegmentation, StageOverlayRender},
		{StageOverlayRender, StageOverlayValidation},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}

	routers := []struct {
		from   string
		router pipeline.Router
	}{
		{
			from: StageTextValidation,
			router: pipeline.Router{
				Name:   "retry_text",
				Policy: pipeline.RetryPolicy{MaxAttempts: s.cfg.MaxTextAttempts},
				Decide: func(pc *pipeline.Context) string {
					return pipeline.Route(pc.TextAttempts, s.cfg.MaxTextAttempts, pc.TextValidation.Passed)
				},
				Targets: map[string]string{
					pipeline.RouteRetry:    StageTextGeneration,
					pipeline.RouteContinue: StageImageGeneration,
				},
			},
		},
		{
			from: StageImageValidation,
			router: pipeline.Router{
				Name:   "retry_image",
				Policy: pipeline.RetryPolicy{MaxAttempts: s.cfg.MaxImageAttempts},
				Decide: func(pc *pipeline.Context) string {
					return pipeline.Route(pc.ImageAttempts, s.cfg.MaxImageAttempts, pc.ImageValidation.Passed)
				},
				Targets: map[string]string{
					pipeline.RouteRetry:    StageImageGeneration,
					pipeline.RouteContinue: StageSegmentation,
				},
			},
		},
		{
			from: StageOverlayValidation,
			router: pipeline.Router{
				Name:   "retry_overlay",
				Policy: pipeline.RetryPolicy{MaxAttempts: s.cfg.MaxOverlayAttempts},
				Decide: func(pc *pipeline.Context) string {
					return pipeline.Route(pc.OverlayAttempts, s.cfg.MaxOverlayAttempts, pc.OverlayValidation.Passed)
				},
				Targets: map[string]string{
					pipeline.RouteRetry:    StageOverlayRender,
					pipeline.RouteContinue: StageSaveOutput,
				},
			},
		},
	}
	for _, r := range routers {
		if err := g.AddConditionalEdge(r.from, r.router); err != nil {
			return nil, err
		}
	}

	g.SetEntryPoint(StageLoadInput)
	g.SetTerminal(StageSaveOutput)

	if err := g.Compile(); err != nil {
		return nil, fmt.Errorf("compile poster workflow: %w", err)
	}
	return g, nil
}
