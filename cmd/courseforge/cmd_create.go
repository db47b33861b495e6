package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/felixgeelhaar/courseforge/internal/generator"
	"github.com/spf13/cobra"
)

var (
	createLanguage string
	createLaunch   bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a programming course in the workspace",
	Long: `Create a course folder named programming-course-<language> in the workspace,
write its course.json and generate the first module.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createLanguage, "language", "l", "",
		"Course language: javascript or python (prompted when omitted)")
	createCmd.Flags().BoolVar(&createLaunch, "launch", false,
		"Open the first lesson when the course is created")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	language := createLanguage
	if language == "" {
		language, err = askLanguage(a.cfg.DefaultLanguage)
		if err != nil {
			return err
		}
	}

	res, err := a.courses.CreateCourse(ctx, course.CreateRequest{Language: language})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "✓ Created %s\n", res.Manifest.Name)
	fmt.Fprintf(out, "  Folder:  %s\n", res.CourseDir)
	fmt.Fprintf(out, "  Modules: %d\n", len(res.Manifest.Modules))
	fmt.Fprintf(out, "  Lesson:  %s\n", res.LessonPath)
	fmt.Fprintf(out, "\nRead the lesson, then run %s inside the module folder.\n", bold.Sprint("courseforge test"))

	if createLaunch {
		return launch(res.LessonPath)
	}
	return nil
}

// askLanguage prompts for the course language
func askLanguage(defaultLanguage string) (string, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		if defaultLanguage != "" {
			return defaultLanguage, nil
		}
		return "", fmt.Errorf("no terminal for the language prompt; pass --language")
	}

	prompt := &survey.Select{
		Message: "Select a programming language:",
		Options: generator.Languages(),
	}
	if defaultLanguage != "" {
		prompt.Default = defaultLanguage
	}

	var language string
	if err := survey.AskOne(prompt, &language); err != nil {
		return "", fmt.Errorf("language prompt: %w", err)
	}
	return language, nil
}
