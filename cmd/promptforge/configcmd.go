package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joss/promptforge/internal/config"
	"github.com/joss/promptforge/internal/render"
	"github.com/joss/promptforge/internal/storage"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored provider/model configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			w := render.Stdout()
			w.Header("promptforge configuration")
			w.Item("Provider: %s", storedProvider(ctx, a.store))
			w.Item("Model:    %s", a.generator.Model())
			w.Item("Autosave: %s", render.BoolIcon(a.manager.AutosaveEnabled()))
			w.Section("storage")
			w.Item("%s", a.store.Path())
			return nil
		},
	}

	cmd.AddCommand(configSetCmd(), configAutosaveCmd())
	return cmd
}

func configSetCmd() *cobra.Command {
	var (
		providerID string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the default provider and model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerID == "" && model == "" {
				return fmt.Errorf("nothing to set: pass --provider and/or --model")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			mc := modelConfig{
				Provider: storedProvider(ctx, a.store),
				Model:    storedModel(ctx, a.store),
			}
			if providerID != "" {
				if _, err := buildProvider(providerID); err != nil {
					return err
				}
				mc.Provider = providerID
			}
			if model != "" {
				mc.Model = model
			}

			data, err := json.Marshal(mc)
			if err != nil {
				return err
			}
			if err := a.store.Set(ctx, storage.KeyModelConfig, data); err != nil {
				return err
			}
			render.Stdout().Println("Configured %s / %s", mc.Provider, mc.Model)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "Provider id (openai, anthropic)")
	cmd.Flags().StringVar(&model, "model", "", fmt.Sprintf("Model id (default %s)", config.DefaultModel))
	return cmd
}

func configAutosaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autosave <on|off>",
		Short: "Toggle the autosave preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("want on or off, got %q", args[0])
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			a.manager.SetAutosaveEnabled(context.Background(), enabled)
			render.Stdout().Println("Autosave: %s", args[0])
			return nil
		},
	}
}
