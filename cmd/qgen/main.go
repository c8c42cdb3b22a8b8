// Command qgen generates exam questions from local documents without
// running the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "qgen",
		Short:        "Generate Bloom's taxonomy exam questions from documents",
		SilenceUsage: true,
	}
	root.AddCommand(generateCmd(), batchCmd())
	return root
}

// requirementFlags are shared by generate and batch.
type requirementFlags struct {
	count        int
	distribution string
	difficulty   string
	types        []string
	useAI        bool
}

func (r *requirementFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&r.count, "count", "n", 10, "Number of questions to request")
	f.StringVarP(&r.distribution, "distribution", "d", "balanced", "Bloom distribution (balanced, foundational, advanced)")
	f.StringVar(&r.difficulty, "difficulty", "medium", "Difficulty (easy, medium, hard)")
	f.StringSliceVarP(&r.types, "types", "t", nil, "Question types (multiple-choice, true-false, short-answer, essay, fill-blank)")
	f.BoolVar(&r.useAI, "ai", false, "Use the configured LLM provider")
}

type generateOptions struct {
	requirementFlags
	file   string
	format string
	output string
	title  string
}

func generateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Extract a document and print generated questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	opts.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Document to read (pdf, docx, pptx, xlsx, jpeg, png)")
	f.StringVar(&opts.format, "format", "json", "Output format (json, markdown)")
	f.StringVarP(&opts.output, "output", "o", "-", "Output file path (- for stdout)")
	f.StringVar(&opts.title, "title", "", "Exam title for markdown output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runGenerate(ctx context.Context, opts *generateOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "json" && opts.format != "markdown" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	requirements, err := buildRequirements(&opts.requirementFlags)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.openSession(ctx, opts.file)
	if err != nil {
		return err
	}
	generations, err := a.generations(ctx, opts.useAI, false)
	if err != nil {
		return err
	}
	result, err := generations.GenerateQuestions(ctx, sessionID, requirements)
	if err != nil {
		return err
	}

	out := stdout
	if opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if opts.format == "json" {
		return writeJSON(out, result)
	}

	exams := service.NewExamService(a.sessions, generations, nil, nil)
	paper, err := exams.GenerateExamPaper(ctx, &dto.GenerateExamPaperRequest{
		Questions:  result.Questions,
		ExamConfig: domain.ExamConfig{ExamTitle: opts.title},
	})
	if err != nil {
		return err
	}
	md, err := exams.ExportMarkdown(ctx, paper.ExamPaper)
	if err != nil {
		return err
	}
	_, err = out.Write(md.Data)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func buildRequirements(opts *requirementFlags) (domain.Requirements, error) {
	if opts.count < 1 || opts.count > 100 {
		return domain.Requirements{}, fmt.Errorf("--count must be between 1 and 100, got %d", opts.count)
	}
	types := make([]domain.QuestionType, 0, len(opts.types))
	for _, raw := range opts.types {
		t, ok := domain.ParseQuestionType(raw)
		if !ok {
			return domain.Requirements{}, fmt.Errorf("unknown question type %q", raw)
		}
		types = append(types, t)
	}
	r := domain.Requirements{
		QuestionCount:     opts.count,
		QuestionTypes:     types,
		BloomDistribution: strings.ToLower(opts.distribution),
		Difficulty:        domain.Difficulty(opts.difficulty),
		UseAI:             opts.useAI,
	}
	r.Normalize()
	return r, nil
}
