package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/reelcast/reelcast/internal/assets"
	"github.com/reelcast/reelcast/internal/config"
	"github.com/reelcast/reelcast/internal/export"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/player"
	"github.com/reelcast/reelcast/internal/project"
	"github.com/reelcast/reelcast/internal/storyboard"
	"github.com/reelcast/reelcast/internal/system"
)

var version = "dev"

func main() {
	system.InitResourceLimits()

	projectPtr := flag.String("project", "", "Path to the project file (.yaml or .json)")
	outputPtr := flag.String("output", "", "Output video path (empty: timestamped name next to the project)")
	formatPtr := flag.String("format", "landscape", "Frame format: landscape, portrait, square, 4:5")
	fpsPtr := flag.Int("fps", 30, "Frames per second")
	qualityPtr := flag.Int("quality", 0, "Encoder quality (0 = auto per encoder)")
	encoderPtr := flag.String("encoder", "", "Video encoder (empty = auto-detect)")
	fontPtr := flag.String("font", "", "TTF/OTF font for subtitles and tags")
	pacingPtr := flag.String("pacing", "standard", "Pacing: relaxed, standard, fast")
	subStylePtr := flag.String("subtitle-style", "plain", "Subtitle style: plain, boxed, neon, glitch, comic, karaoke, word")
	filterPtr := flag.String("filter", "", "Color filter preset")
	transitionPtr := flag.String("transition", "fade", "Default transition: fade, slide, zoom, wipe, none")
	fromDocPtr := flag.String("from-doc", "", "Scaffold the project from a PDF or image instead of -project")
	docDurPtr := flag.Float64("doc-duration", 0, "Total duration for a scaffolded document (0: 8s per page)")
	saveProjectPtr := flag.String("save-project", "", "Write the scaffolded project to this path and exit")
	musicPtr := flag.String("music", "", "Background music files, comma separated")
	musicVolPtr := flag.Float64("music-volume", 0.3, "Music volume 0..1")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Worker threads")
	exportPtr := flag.Bool("export", false, "Render to a file instead of live preview")
	hqPtr := flag.Bool("hq", false, "Double the render resolution for export")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")
	versionPtr := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionPtr {
		fmt.Printf("reelcast %s\n", version)
		return
	}

	logging.Init(*verbosePtr)
	log := logging.WithComponent("main")

	if *projectPtr == "" && *fromDocPtr == "" {
		fmt.Fprintln(os.Stderr, "[-] No project. Use -project path/to/project.yaml or -from-doc slides.pdf")
		os.Exit(1)
	}

	format := config.Format(*formatPtr)
	width, height := config.FormatDimensions(format)

	var proj *project.Project
	var err error
	if *fromDocPtr != "" {
		builder := storyboard.NewBuilder(width, height)
		pages, perr := assets.DocumentPageCount(*fromDocPtr)
		if perr != nil {
			log.Fatal().Err(perr).Msg("document inspection failed")
		}
		docDur := *docDurPtr
		if docDur <= 0 {
			docDur = 8 * float64(pages)
		}
		proj, err = builder.FromDocument(*fromDocPtr, docDur)
		if err != nil {
			log.Fatal().Err(err).Msg("storyboard generation failed")
		}
		fmt.Printf("[*] Scaffolded %d scenes from %s\n", len(proj.Scenes), *fromDocPtr)
		if *saveProjectPtr != "" {
			if err := project.Save(proj, *saveProjectPtr); err != nil {
				log.Fatal().Err(err).Msg("project save failed")
			}
			fmt.Printf("[+] Project written: %s\n", *saveProjectPtr)
			return
		}
	} else {
		proj, err = project.Load(*projectPtr)
		if err != nil {
			log.Fatal().Err(err).Msg("project load failed")
		}
	}
	if len(proj.Scenes) == 0 {
		log.Fatal().Msg("project has no scenes")
	}
	fmt.Printf("[*] Project: %s (%d scenes)\n", proj.Title, len(proj.Scenes))

	if *exportPtr && *hqPtr {
		width, height = width*2, height*2
	}

	encoder := *encoderPtr
	if encoder == "" && system.HasFFmpeg() {
		encoder = system.GetBestH264Encoder()
		if encoder != "libx264" {
			fmt.Printf("[*] Hardware encoder: %s\n", encoder)
		}
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoder {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	cfg := &config.Config{
		ProjectPath:  *projectPtr,
		OutputVideo:  *outputPtr,
		Format:       format,
		Width:        width,
		Height:       height,
		FPS:          *fpsPtr,
		Workers:      *workersPtr,
		VideoEncoder: encoder,
		Quality:      quality,
		FontPath:     *fontPtr,
		BuildVersion: version,
	}

	settings := config.DefaultSettings()
	settings.Format = format
	settings.Pacing = config.Pacing(*pacingPtr)
	settings.SubtitleStyle = config.SubtitleStyle(*subStylePtr)
	settings.Filter = *filterPtr
	settings.Transition = *transitionPtr
	settings.MusicVolume = *musicVolPtr
	if *musicPtr != "" {
		settings.MusicTracks = strings.Split(*musicPtr, ",")
	}

	if *exportPtr {
		runExport(proj, cfg, settings)
		return
	}
	runPreview(proj, cfg, settings)
}

func runExport(proj *project.Project, cfg *config.Config, settings *config.Settings) {
	log := logging.WithComponent("main")

	p := player.New(proj, cfg, settings, false)
	defer p.Stop()

	rec := export.NewRecorder(p, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\n[!] Stopping, keeping the partial capture...")
		rec.Stop()
	}()

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				fmt.Printf("\r[*] Exporting... %d%%", rec.Progress())
			case <-done:
				return
			}
		}
	}()

	start := time.Now()
	path, err := rec.Export(ctx, proj.Title)
	close(done)
	if err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}
	fmt.Printf("\r[+] Done in %s: %s\n", time.Since(start).Round(time.Second), path)
}

func runPreview(proj *project.Project, cfg *config.Config, settings *config.Settings) {
	p := player.New(proj, cfg, settings, true)
	defer p.Stop()

	total := p.TotalDuration()
	fmt.Printf("[*] Preview %dx%d @ %dfps, %.1fs total\n", cfg.Width, cfg.Height, cfg.FPS, total)

	p.SetCallbacks(player.Callbacks{
		OnSceneChange: func(ix int) {
			fmt.Printf("[*] Scene %d/%d: %s\n", ix+1, len(proj.Scenes), proj.Scenes[ix].ID)
		},
		OnComplete: func() {
			fmt.Println("[+] Playback complete")
		},
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	p.Play()
	fmt.Printf("[*] Scene 1/%d: %s\n", len(proj.Scenes), proj.Scenes[0].ID)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()
	prev := time.Now()

	for {
		select {
		case <-sig:
			fmt.Println("\n[!] Interrupted")
			return
		case now := <-ticker.C:
			dt := now.Sub(prev).Seconds()
			prev = now
			p.Tick(dt)
			if p.Complete() {
				return
			}
		}
	}
}
