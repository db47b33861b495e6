package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/felixgeelhaar/courseforge/internal/assets"
	"github.com/spf13/cobra"
)

var newModuleCmd = &cobra.Command{
	Use:   "new-module [id] [title]",
	Short: "Add a module to a course content directory",
	Long: `Add a chapter to the course content directory given by --assets (or assets_dir
in the configuration): chapter-info.json, a placeholder exercise definition,
a metadata file and a lesson under templates/chapters. The id must look like
06-arrays. Missing arguments are prompted for.`,
	Example: `  courseforge new-module 04-arrays Arrays --assets ./content`,
	Args:    cobra.MaximumNArgs(2),
	RunE:    runNewModule,
}

func init() {
	rootCmd.AddCommand(newModuleCmd)
}

func runNewModule(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.AssetsDir
	if dir == "" {
		return errors.New("the built-in content is read-only; pass --assets DIR")
	}

	var id, title string
	if len(args) > 0 {
		id = args[0]
	}
	if len(args) > 1 {
		title = args[1]
	}
	if id == "" || title == "" {
		if id, title, err = askModule(id, title); err != nil {
			return err
		}
	}

	written, err := assets.ScaffoldModule(ctx, dir, assets.ModuleScaffold{ID: id, Title: title}, a.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "✓ Created module %s: %s\n", id, title)
	for _, p := range written {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintln(out, "\nEdit the exercise definition and lesson, then create a course to try it.")
	return nil
}

// askModule prompts for whichever of id and title is missing
func askModule(id, title string) (string, string, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return "", "", errors.New("no terminal for the prompt; pass the module id and title")
	}

	var qs []*survey.Question
	if id == "" {
		qs = append(qs, &survey.Question{
			Name:     "id",
			Prompt:   &survey.Input{Message: "Module ID:", Help: "Two digits, a hyphen and a name, e.g. 06-arrays"},
			Validate: survey.Required,
		})
	}
	if title == "" {
		qs = append(qs, &survey.Question{
			Name:     "title",
			Prompt:   &survey.Input{Message: "Module title:"},
			Validate: survey.Required,
		})
	}

	answers := struct {
		ID    string `survey:"id"`
		Title string `survey:"title"`
	}{ID: id, Title: title}
	if err := survey.Ask(qs, &answers); err != nil {
		return "", "", fmt.Errorf("module prompt: %w", err)
	}
	return strings.TrimSpace(answers.ID), strings.TrimSpace(answers.Title), nil
}
