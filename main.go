package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flags = struct {
		ConfigFile string
		LogLevel   string
		Output     string
		Slide      int
		Scale      float64
		Meta       SlideMetadata
	}{}

	root = &cobra.Command{
		Use:   "slidedeck [deck.json]",
		Short: "slidedeck is a terminal slide deck editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			editor, filename, meta, err := openEditor(args, log)
			if err != nil {
				return err
			}
			p := tea.NewProgram(
				newModel(editor, cfg, log, filename, meta),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			_, err = p.Run()
			return err
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export deck.json",
		Short: "Write a deck as a .pptx presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			doc, meta, err := LoadDeck(args[0], uuid.NewString)
			if err != nil {
				return err
			}
			data, err := PPTXExporter{}.Export(cmd.Context(), doc)
			if err != nil {
				return errors.Wrap(err, "export")
			}
			out := flags.Output
			if out == "" {
				out = cfg.GetSavePath(ExportFileName(meta.Title, time.Now()))
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return errors.Wrap(err, "write export")
			}
			log.WithFields(logrus.Fields{"path": out, "bytes": len(data)}).Info("deck exported")
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d slides)\n", out, humanize.Bytes(uint64(len(data))), len(doc.Slides))
			return nil
		},
	}

	renderCmd = &cobra.Command{
		Use:   "render deck.json",
		Short: "Render one slide as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			doc, _, err := LoadDeck(args[0], uuid.NewString)
			if err != nil {
				return err
			}
			i := flags.Slide - 1
			if i < 0 || i >= len(doc.Slides) {
				return errors.Wrapf(ErrSlideOutOfRange, "slide %d of %d", flags.Slide, len(doc.Slides))
			}
			scale := flags.Scale
			if scale <= 0 {
				scale = cfg.ExportScale
			}
			fm, err := NewFontMeasurer()
			if err != nil {
				return err
			}
			out := flags.Output
			if out == "" {
				base := strings.TrimSuffix(args[0], ".json")
				out = cfg.GetSavePath(fmt.Sprintf("%s-%d.png", base, flags.Slide))
			}
			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "create png")
			}
			if err := RenderSlidePNG(f, doc.Slides[i], scale, fm); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "close png")
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	publishCmd = &cobra.Command{
		Use:   "publish deck.json",
		Short: "Upload a deck and its metadata to the catalogue API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			doc, saved, err := LoadDeck(args[0], uuid.NewString)
			if err != nil {
				return err
			}
			meta := mergeMetadata(saved, flags.Meta, cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			res, err := NewUploader(cfg, log.WithField("component", "uploader")).Upload(ctx, meta, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s (%s), status %d\n", res.FileName, humanize.Bytes(uint64(res.Size)), res.Status)
			return nil
		},
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file (default ~/.slidedeck.yaml)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level (overrides config)")

	exportCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output file")

	renderCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output file")
	renderCmd.Flags().IntVarP(&flags.Slide, "slide", "s", 1, "slide number, starting at 1")
	renderCmd.Flags().Float64Var(&flags.Scale, "scale", 0, "scale factor (default from config)")

	publishCmd.Flags().StringVar(&flags.Meta.Title, "title", "", "deck title")
	publishCmd.Flags().StringVar(&flags.Meta.Topic, "topic", "", "deck topic")
	publishCmd.Flags().Float64Var(&flags.Meta.Price, "price", 0, "price")
	publishCmd.Flags().IntVar(&flags.Meta.Grade, "grade", 0, "grade, 1 to 12")
	publishCmd.Flags().BoolVar(&flags.Meta.IsPublished, "published", false, "make the deck visible right away")

	root.AddCommand(exportCmd, renderCmd, publishCmd)
}

// setup loads configuration and opens the log. The returned closer is
// always safe to call.
func setup() (*Config, *logrus.Entry, io.Closer, error) {
	cfg, err := LoadConfig(flags.ConfigFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	logger, closer, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logrus.NewEntry(logger), closer, nil
}

func openEditor(args []string, log *logrus.Entry) (*Editor, string, SlideMetadata, error) {
	fm, err := NewFontMeasurer()
	if err != nil {
		return nil, "", SlideMetadata{}, err
	}
	opts := []EditorOption{WithLogger(log.WithField("component", "editor"))}
	if len(args) == 0 {
		return NewEditor(fm, opts...), "", SlideMetadata{}, nil
	}
	filename := args[0]
	doc, meta, err := LoadDeck(filename, uuid.NewString)
	switch {
	case err == nil:
		opts = append(opts, WithDocument(doc))
	case errors.Is(err, os.ErrNotExist):
		// a new deck, written on first save
	default:
		return nil, "", SlideMetadata{}, err
	}
	return NewEditor(fm, opts...), filename, meta, nil
}

// mergeMetadata lets flags override what was saved with the deck.
func mergeMetadata(saved, fromFlags SlideMetadata, cmd *cobra.Command) SlideMetadata {
	out := saved
	f := cmd.Flags()
	if f.Changed("title") {
		out.Title = fromFlags.Title
	}
	if f.Changed("topic") {
		out.Topic = fromFlags.Topic
	}
	if f.Changed("price") {
		out.Price = fromFlags.Price
	}
	if f.Changed("grade") {
		out.Grade = fromFlags.Grade
	}
	if f.Changed("published") {
		out.IsPublished = fromFlags.IsPublished
	}
	return out
}

func Execute() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
