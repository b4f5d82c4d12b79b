package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrypster/promptcraft/internal/engine"
	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/pkg/types"
)

// errInvalid is returned after validation issues have been printed.
var errInvalid = errors.New("prompt configuration is invalid")

func (c *cli) loadPromptInput(path string) (types.PromptInput, error) {
	var in types.PromptInput
	data, err := c.readInput(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parse input: %w", err)
	}
	return in, nil
}

func (c *cli) printIssues(result types.ValidationResult) {
	for _, e := range result.Errors {
		fmt.Fprintf(c.out, "error: %s: %s (%s)\n", e.Field, e.Message, e.Code)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(c.out, "warning: %s: %s (%s)\n", w.Field, w.Message, w.Code)
	}
}

func (c *cli) composeCmd() *cobra.Command {
	var (
		file           string
		skipValidation bool
		withSystem     bool
		asJSON         bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose the final prompt for an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.loadPromptInput(file)
			if err != nil {
				return err
			}
			if !skipValidation {
				result := engine.ValidateCompletePromptConfig(in)
				if !result.IsValid {
					c.printIssues(result)
					return errInvalid
				}
			}

			gp := engine.GenerateEnhancedPrompt(in, time.Now().UTC())
			if asJSON {
				out, err := export.ExportAsJSON(export.NewBundle(in, &gp, nil, gp.Metadata.Timestamp))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, out)
				return nil
			}
			if withSystem {
				fmt.Fprintf(c.out, "SYSTEM PROMPT:\n%s\n\nFINAL PROMPT:\n", gp.SystemPrompt)
			}
			fmt.Fprintln(c.out, gp.FinalPrompt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Input JSON file (- for stdin)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Compose even when validation fails")
	cmd.Flags().BoolVar(&withSystem, "system", false, "Also print the system prompt")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full export bundle as JSON")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.loadPromptInput(file)
			if err != nil {
				return err
			}
			result := engine.ValidateCompletePromptConfig(in)
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, string(data))
			} else {
				c.printIssues(result)
				if result.IsValid {
					fmt.Fprintln(c.out, "valid")
				}
			}
			if !result.IsValid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Input JSON file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the validation result as JSON")
	return cmd
}

func (c *cli) parseCmd() *cobra.Command {
	var (
		file   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse alternatives out of a verbalized-sampling response",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := c.readInput(file)
			if err != nil {
				return err
			}
			parsed := engine.ParseVSResponse(string(raw))

			switch strings.ToLower(output) {
			case "csv":
				out, err := export.ResponsesCSV(parsed.Responses)
				if err != nil {
					return err
				}
				fmt.Fprint(c.out, out)
			case "json", "":
				data, err := json.MarshalIndent(parsed.Responses, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, string(data))
			default:
				return fmt.Errorf("unsupported output %q", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Response text file (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or csv")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		file   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a template document as json, text, markdown or yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readInput(file)
			if err != nil {
				return err
			}
			t, err := export.ImportTemplate(data)
			if err != nil {
				return err
			}

			var out string
			if strings.EqualFold(format, export.FormatJSON) {
				out, err = export.ExportTemplateJSON(*t)
			} else {
				out, err = export.Render(format, export.NewBundle(t.Input(), nil, nil, time.Now().UTC()))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, strings.TrimRight(out, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Template JSON file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", export.FormatMarkdown, "Output format: json, text, markdown or yaml")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Check a template document and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readInput(file)
			if err != nil {
				return err
			}
			t, err := export.ImportTemplate(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "id: %s\nname: %s\n", t.ID, t.Name)
			if t.Config.Framework != types.FrameworkNone {
				fmt.Fprintf(c.out, "framework: %s\n", t.Config.Framework)
			}
			if len(t.Tags) > 0 {
				fmt.Fprintf(c.out, "tags: %s\n", strings.Join(t.Tags, ", "))
			}

			result := engine.ValidateCompletePromptConfig(t.Input())
			c.printIssues(result)
			if !result.IsValid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Template JSON file (- for stdin)")
	return cmd
}
