// Command mdedit edits one markdown file in a window, rendering each block
// as rich text while keeping its markdown source one keystroke away.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/rjkroege/mdedit/config"
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/editor"
	"github.com/rjkroege/mdedit/rich"
	"github.com/rjkroege/mdedit/style"
	"github.com/rjkroege/mdedit/theme"
	"go.uber.org/zap"
)

const defaultVarFont = "/lib/font/bit/lucsans/euro.8.font"

var (
	varfontflag = flag.String("f", defaultVarFont, "Variable Width Font")
	winsize     = flag.String("W", "1024x768", "Window Size (WidthxHeight)")
	configflag  = flag.String("c", "", "Configuration file (default "+config.FileName+" next to the document)")
	debugflag   = flag.Bool("debug", false, "Verbose logging; panic on broken document invariants")
	darkflag    = flag.Bool("dark", false, "Dark colour scheme")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: mdedit [flags] file.md\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}
	file, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		file = flag.Arg(0)
	}

	cfgpath := *configflag
	if cfgpath == "" {
		cfgpath = filepath.Join(filepath.Dir(file), config.FileName)
	}
	cfg, err := config.Load(cfgpath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdedit: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debugflag
	cfg.Dark = cfg.Dark || *darkflag

	logger := newLogger(cfg.Debug)
	defer logger.Sync()
	theme.SetDarkMode(cfg.Dark)

	fontname := *varfontflag
	if cfg.Fonts.Regular != "" {
		fontname = cfg.Fonts.Regular
	}
	display, err := draw.NewDisplay(nil, fontname, "mdedit", *winsize)
	if err != nil {
		logger.Fatal("can't open display", zap.Error(err))
	}
	if err := display.Attach(draw.Refnone); err != nil {
		logger.Fatal("failed to attach to window", zap.Error(err))
	}
	mousectl := display.InitMouse()
	keyboardctl := display.InitKeyboard()

	sheet := style.Default()
	if cfg.StyleSheet != "" {
		sheet, err = style.Load(cfg.StyleSheet)
		if err != nil {
			logger.Fatal("can't load style sheet", zap.Error(err))
		}
	}
	images := rich.NewImageCache(cfg.ImageCache)
	opts := []rich.Option{
		rich.WithSheet(sheet),
		rich.WithImageCache(images),
		rich.WithLogger(logger.Named("rich")),
	}
	font, err := display.OpenFont(fontname)
	if err != nil {
		logger.Fatal("can't open font", zap.String("font", fontname), zap.Error(err))
	}
	opts = append(opts, rich.WithFont(font))
	opts = append(opts, fontOptions(display, cfg, sheet, logger)...)
	r := rich.New(opts...)
	defer r.Close()

	ed := editor.New(display, r, display.ScreenImage().R(),
		editor.WithLogger(logger.Named("editor")),
		editor.WithConfig(cfg),
		editor.WithImageCache(images),
	)
	defer ed.Close()
	if err := ed.Open(file); err != nil {
		logger.Fatal("can't open document", zap.String("file", file), zap.Error(err))
	}

	redraw := func() {
		ed.Redraw(display.ScreenImage())
		if err := display.Flush(); err != nil {
			logger.Warn("flush", zap.Error(err))
		}
	}
	redraw()

	csignal := make(chan os.Signal, 1)
	signal.Notify(csignal, os.Interrupt)
	guard := &quitGuard{log: logger}
	for {
		select {
		case <-mousectl.Resize:
			if err := display.Attach(draw.Refnone); err != nil {
				logger.Fatal("failed to attach to window", zap.Error(err))
			}
			ed.Resize(display.ScreenImage().R())
			redraw()

		case m := <-mousectl.C:
			if ed.Mouse(m) {
				redraw()
			}

		case k := <-keyboardctl.C:
			if k == draw.KeyCmd+'q' {
				if guard.allow("Cmd-q", ed.Dirty(), ed.Edits()) {
					return
				}
				continue
			}
			if ed.Key(k) {
				redraw()
			}

		case <-ed.Updates():
			ed.Tick()
			redraw()

		case s := <-csignal:
			if guard.allow(s.String(), ed.Dirty(), ed.Edits()) {
				logger.Info("exiting", zap.Stringer("signal", s))
				return
			}
		}
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// fontOptions opens the configured font variants. A variant that fails to
// open falls back to the regular font.
func fontOptions(d draw.Display, cfg *config.Config, sheet *style.Sheet, logger *zap.Logger) []rich.Option {
	open := func(name string) draw.Font {
		if name == "" {
			return nil
		}
		f, err := d.OpenFont(name)
		if err != nil {
			logger.Warn("can't open font", zap.String("font", name), zap.Error(err))
			return nil
		}
		return f
	}

	var opts []rich.Option
	if f := open(cfg.Fonts.Bold); f != nil {
		opts = append(opts, rich.WithBoldFont(f))
	}
	if f := open(cfg.Fonts.Italic); f != nil {
		opts = append(opts, rich.WithItalicFont(f))
	}
	if f := open(cfg.Fonts.BoldItalic); f != nil {
		opts = append(opts, rich.WithBoldItalicFont(f))
	}
	if f := open(cfg.Fonts.Code); f != nil {
		opts = append(opts, rich.WithCodeFont(f))
	}
	for level := 1; level <= 6; level++ {
		f := open(cfg.HeadingFont(level))
		if f == nil {
			continue
		}
		size := sheet.Resolve("h"+strconv.Itoa(level), "").FontSize
		opts = append(opts, rich.WithScaledFont(size, f))
	}
	return opts
}
