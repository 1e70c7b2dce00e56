package main

import (
	"context"
	"errors"
	"flag"
	"image/color"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/roffe/txgauge/pkg/alarm"
	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/config"
	"github.com/roffe/txgauge/pkg/dashboard"
	"github.com/roffe/txgauge/pkg/eventbus"
	"github.com/roffe/txgauge/pkg/feed"
	"github.com/roffe/txgauge/pkg/statestore"
	"github.com/skratchdot/open-golang/open"
	sdialog "github.com/sqweek/dialog"
	"golang.design/x/clipboard"
)

const appID = "com.roffe.txgauge"

var (
	configFile string
	feedFile   string
	demo       bool
	storeKind  string
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
	flag.StringVar(&configFile, "config", "", "gauge config yaml, empty uses the last opened or the built-in demo")
	flag.StringVar(&feedFile, "feed", "", "read topic=value lines from file, - for stdin")
	flag.BoolVar(&demo, "demo", true, "publish demo signals")
	flag.StringVar(&storeKind, "store", "prefs", "gauge state storage: prefs or gdata")
}

type mainWindow struct {
	fyne.Window
	app   fyne.App
	bus   *eventbus.Controller
	store statestore.Store

	ctx      context.Context
	cfgPath  string
	db       *dashboard.Dashboard
	alarms   []func()
	stopDemo context.CancelFunc
}

func main() {
	flag.Parse()

	a := app.NewWithID(appID)
	a.Settings().SetTheme(&gaugeTheme{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := eventbus.New(nil)
	defer bus.Close()

	mw := &mainWindow{
		Window: a.NewWindow("txgauge"),
		app:    a,
		bus:    bus,
		ctx:    ctx,
	}

	store, err := openStore(a, storeKind)
	if err != nil {
		log.Printf("state storage unavailable: %v", err)
	}
	mw.store = store

	path := configFile
	if path == "" {
		path = a.Preferences().String("lastConfig")
	}
	if err := mw.load(path); err != nil {
		log.Printf("failed to load %s: %v, using demo config", path, err)
		if err := mw.load(""); err != nil {
			log.Fatal(err)
		}
	}

	if feedFile != "" {
		go func() {
			if err := runFeed(ctx, bus, feedFile); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("feed: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		fyne.Do(mw.Close)
	}()

	mw.SetCloseIntercept(func() {
		mw.saveState()
		mw.Window.Close()
	})
	mw.Resize(fyne.NewSize(
		float32(a.Preferences().FloatWithFallback("windowWidth", 1024)),
		float32(a.Preferences().FloatWithFallback("windowHeight", 768)),
	))
	mw.ShowAndRun()
}

func openStore(a fyne.App, kind string) (statestore.Store, error) {
	switch kind {
	case "gdata":
		return statestore.OpenGdata("txgauge")
	default:
		return statestore.NewPreferences(a.Preferences()), nil
	}
}

// load replaces the dashboard with the one described by path, or the
// built-in demo when path is empty.
func (mw *mainWindow) load(path string) error {
	f := config.Default()
	if path != "" {
		var err error
		if f, err = config.Load(path); err != nil {
			return err
		}
	}
	db, err := dashboard.NewDashboard(&dashboard.Config{File: f})
	if err != nil {
		return err
	}
	mw.bus.ClearAggregators()
	if err := f.RegisterAggregators(mw.bus); err != nil {
		return err
	}

	if mw.db != nil {
		mw.saveState()
		mw.db.Close()
	}
	for _, cancel := range mw.alarms {
		cancel()
	}
	mw.alarms = nil

	mw.db = db
	mw.cfgPath = path
	if mw.store != nil {
		if err := db.RestoreState(mw.store); err != nil {
			log.Println(err)
		}
	}
	mw.bindNeedleColors(db)
	db.Connect(mw.bus)
	mw.setupAlarms(f)
	mw.startDemo(f)

	title := f.Title
	if title == "" {
		title = "txgauge"
	}
	mw.SetTitle(title)
	mw.SetContent(container.NewBorder(mw.toolbar(), nil, nil, nil, db))
	if path != "" {
		mw.app.Preferences().SetString("lastConfig", path)
	}
	return nil
}

func (mw *mainWindow) startDemo(f *config.File) {
	if mw.stopDemo != nil {
		mw.stopDemo()
		mw.stopDemo = nil
	}
	if !demo {
		return
	}
	ctx, cancel := context.WithCancel(mw.ctx)
	mw.stopDemo = cancel
	waves := demoWaves(f)
	go func() {
		if err := feed.RunDemo(ctx, mw.bus, 20, waves...); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("demo: %v", err)
		}
	}()
}

func (mw *mainWindow) setupAlarms(f *config.File) {
	rules := f.AlarmRules()
	if len(rules) == 0 {
		return
	}
	var player alarm.Player = alarm.Tone(880, 300*time.Millisecond)
	if f.AlarmSound != "" {
		snd, err := alarm.LoadMP3(f.AlarmSound)
		if err != nil {
			log.Printf("alarm sound: %v, using beep", err)
		} else {
			player = snd
		}
	}
	mon, err := alarm.NewMonitor(player, rules...)
	if err != nil {
		log.Printf("alarms disabled: %v", err)
		return
	}
	mon.OnAlarm = func(r alarm.Rule, v float64) {
		log.Printf("alarm %s: %g", r.Name, v)
	}
	for _, r := range rules {
		name := r.Name
		mw.alarms = append(mw.alarms, mw.bus.SubscribeFunc(r.Topic, func(v float64) {
			if _, err := mon.Check(name, v); err != nil {
				log.Printf("alarm %s: %v", name, err)
			}
		}))
	}
}

// bindNeedleColors restores picked needle colours and stores new picks.
func (mw *mainWindow) bindNeedleColors(db *dashboard.Dashboard) {
	prefs := mw.app.Preferences()
	for _, d := range db.Dials() {
		key := "needleColor." + d.GetConfig().Name
		if hex := prefs.String(key); hex != "" {
			if c, err := colors.ParseHex(hex); err == nil {
				d.SetNeedleColor(c)
			} else {
				log.Printf("%s: %v", key, err)
			}
		}
		d.OnNeedleColor = func(c color.RGBA) {
			prefs.SetString(key, colors.FormatHex(c))
		}
	}
}

// copyValues puts the latest bus values on the clipboard as feed lines.
func (mw *mainWindow) copyValues() {
	text := feed.FormatLines(mw.bus.Values())
	if err := clipboardInit(); err != nil {
		log.Printf("system clipboard unavailable: %v", err)
		mw.app.Clipboard().SetContent(text)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
}

var clipboardInit = sync.OnceValue(clipboard.Init)

func (mw *mainWindow) saveState() {
	size := mw.Canvas().Size()
	mw.app.Preferences().SetFloat("windowWidth", float64(size.Width))
	mw.app.Preferences().SetFloat("windowHeight", float64(size.Height))
	if mw.store == nil || mw.db == nil {
		return
	}
	if err := mw.db.SaveState(mw.store); err != nil {
		log.Println(err)
	}
}

func (mw *mainWindow) toolbar() fyne.CanvasObject {
	openBtn := widget.NewButton("Open", func() {
		filename, err := sdialog.File().Filter("YAML files", "yaml", "yml").Title("Select gauge config").Load()
		if err != nil {
			if !errors.Is(err, sdialog.ErrCancelled) {
				dialog.ShowError(err, mw)
			}
			return
		}
		if err := mw.load(filename); err != nil {
			dialog.ShowError(err, mw)
		}
	})
	editBtn := widget.NewButton("Edit", func() {
		if mw.cfgPath == "" {
			dialog.ShowInformation("Edit", "The built-in demo config has no file, open one first", mw)
			return
		}
		if err := open.Run(mw.cfgPath); err != nil {
			dialog.ShowError(err, mw)
		}
	})
	reloadBtn := widget.NewButton("Reload", func() {
		if err := mw.load(mw.cfgPath); err != nil {
			dialog.ShowError(err, mw)
		}
	})
	sweepBtn := widget.NewButton("Sweep", func() {
		mw.db.Sweep()
	})
	copyBtn := widget.NewButton("Copy values", mw.copyValues)
	return container.NewHBox(openBtn, editBtn, reloadBtn, sweepBtn, copyBtn)
}

func runFeed(ctx context.Context, bus *eventbus.Controller, path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return feed.ReadLines(ctx, r, bus)
}
