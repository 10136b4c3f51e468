package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/generate"
	"github.com/joss/promptforge/internal/notify"
	"github.com/joss/promptforge/internal/render"
)

func generateCmd() *cobra.Command {
	var (
		framework string
		useCase   string
		model     string
		save      bool
		name      string
	)

	cmd := &cobra.Command{
		Use:   "generate <idea>",
		Short: "Optimize an idea into a framework-structured prompt",
		Long: `Generate sends the idea to the configured model and prints the
optimized prompt. With --save the result is checkpointed as a session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			idea := args[0]

			gen := a.generator
			if model != "" && model != gen.Model() {
				gen = generate.NewService(a.provider, model, a.analytics.Ingest)
			}

			text, err := gen.Optimize(ctx, idea, useCase, framework)
			if err != nil {
				return err
			}

			w := render.Stdout()
			w.Println("%s", text)

			if save {
				a.notifier.Subscribe(func(n notify.Notification) {
					w.Println("%s", a.renderer.Notification(n.Message, string(n.Severity)))
				})
				a.saver.Save(ctx, domain.PromptData{
					Idea:             idea,
					UseCase:          useCase,
					FrameworkAcronym: framework,
					OptimizedPrompt:  text,
					Model:            gen.Model(),
				}, domain.SaveManual, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&framework, "framework", "f", "CO-STAR", "Prompt framework (CO-STAR, RACE, APE, CRISPE, TAG)")
	cmd.Flags().StringVarP(&useCase, "use-case", "u", "", "Intended use of the prompt")
	cmd.Flags().StringVar(&model, "model", "", "Override the configured model for this call")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result as a new session version")
	cmd.Flags().StringVar(&name, "name", "", "Session name when saving")
	return cmd
}
