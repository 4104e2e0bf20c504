package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/effects"
	"github.com/lumenlabs/golight/protocol/packet"
)

var (
	flagAll     bool
	flagKelvin  uint16
	flagPeriod  time.Duration
	flagCycles  int
	flagSpeed   float64
	flagPersist bool

	cmdScan = &cobra.Command{
		Use:     `scan`,
		Short:   `discover devices on the network`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     scan,
	}

	cmdOn = &cobra.Command{
		Use:     `on [target]`,
		Short:   `switch a device (or everything, with --all) on`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     powerOn,
	}

	cmdOff = &cobra.Command{
		Use:     `off [target]`,
		Short:   `switch a device (or everything, with --all) off`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     powerOff,
	}

	cmdColor = &cobra.Command{
		Use:     `color <target> <color>`,
		Short:   `set a device color (name, #rrggbb, rgb(...) or hsb(...))`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setColor,
	}

	cmdLabel = &cobra.Command{
		Use:     `label <target> <label>`,
		Short:   `rename a device`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setLabel,
	}

	cmdInfo = &cobra.Command{
		Use:     `info <target>`,
		Short:   `show a device's current state`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     info,
	}

	cmdWaveform = &cobra.Command{
		Use:     `waveform <target> <shape> <color>`,
		Short:   `run a firmware waveform (saw, sine, halfsine, triangle, pulse)`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     runWaveform,
	}

	cmdEffect = &cobra.Command{
		Use:     `effect <target> <name>`,
		Short:   `run an effect on a device until interrupted`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     runEffect,
	}

	cmdStop = &cobra.Command{
		Use:     `stop <target>`,
		Short:   `stop the effect running on a device`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     stopEffect,
	}

	cmdEffects = &cobra.Command{
		Use:   `effects`,
		Short: `list available effects`,
		Run: func(c *cobra.Command, args []string) {
			for _, name := range effects.Names() {
				fmt.Println(name)
			}
		},
	}
)

func init() {
	cmdOn.Flags().BoolVar(&flagAll, `all`, false, `broadcast to every device`)
	cmdOff.Flags().BoolVar(&flagAll, `all`, false, `broadcast to every device`)
	cmdColor.Flags().Uint16Var(&flagKelvin, `kelvin`, common.DefaultKelvin, `color temperature for white colors`)
	cmdWaveform.Flags().DurationVar(&flagPeriod, `period`, time.Second, `waveform cycle period`)
	cmdWaveform.Flags().IntVar(&flagCycles, `cycles`, 10, `number of cycles to run`)
	cmdEffect.Flags().DurationVar(&flagPeriod, `period`, 0, `effect cycle period`)
	cmdEffect.Flags().IntVar(&flagCycles, `cycles`, 0, `number of cycles to run (0 = until interrupted)`)
	cmdEffect.Flags().Float64Var(&flagSpeed, `speed`, 0, `effect speed multiplier`)
	cmdEffect.Flags().BoolVar(&flagPersist, `persist`, false, `leave the device at the effect's final color`)
}

func discover() {
	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	if _, err := client.Discover(ctx); err != nil {
		logger.WithField(`error`, err).Fatalln(`Discovery failed`)
	}
}

func scan(c *cobra.Command, args []string) {
	discover()
	devs := client.Devices()
	if len(devs) == 0 {
		logger.Warnln(`No devices found`)
		return
	}
	for _, dev := range devs {
		fmt.Printf("%s\t%s\t%q\t%s\tpower=%v\n",
			dev.Serial, dev.IP(), dev.Label, dev.ProductName(), dev.PoweredOn())
	}
}

func setPower(c *cobra.Command, args []string, on bool) {
	if flagAll {
		if err := client.BroadcastPower(on, flagDuration); err != nil {
			logger.WithField(`error`, err).Fatalln(`Broadcast failed`)
		}
		return
	}
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing target`)
	}
	discover()
	if err := client.SetPower(args[0], on, flagDuration); err != nil {
		logger.WithFields(logrus.Fields{
			`target`: args[0],
			`error`:  err,
		}).Fatalln(`Could not set power`)
	}
}

func powerOn(c *cobra.Command, args []string) {
	setPower(c, args, true)
}

func powerOff(c *cobra.Command, args []string) {
	setPower(c, args, false)
}

func setColor(c *cobra.Command, args []string) {
	if len(args) != 2 {
		c.Usage()
		logger.Fatalln(`Need a target and a color`)
	}
	color, err := common.ParseColor(args[1], flagKelvin)
	if err != nil {
		logger.WithFields(logrus.Fields{
			`color`: args[1],
			`error`: err,
		}).Fatalln(`Could not parse color`)
	}
	discover()
	if err := client.SetColor(args[0], color, flagDuration); err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not set color`)
	}
}

func setLabel(c *cobra.Command, args []string) {
	if len(args) != 2 {
		c.Usage()
		logger.Fatalln(`Need a target and a label`)
	}
	discover()
	if err := client.SetLabel(args[0], args[1]); err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not set label`)
	}
}

func info(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing target`)
	}
	discover()
	report, err := client.DeviceInfo(args[0])
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not query device`)
	}

	dev := report.Device
	fmt.Printf("serial:   %s\n", dev.Serial)
	fmt.Printf("address:  %s\n", dev.IP())
	fmt.Printf("label:    %q\n", dev.Label)
	fmt.Printf("product:  %s\n", dev.ProductName())
	fmt.Printf("firmware: %s\n", dev.Firmware())
	fmt.Printf("power:    %v\n", dev.PoweredOn())
	fmt.Printf("color:    %s\n", dev.Color)
	if report.WifiSignalDBm != 0 {
		fmt.Printf("wifi:     %.1f dBm\n", report.WifiSignalDBm)
	}
	if report.Uptime > 0 {
		fmt.Printf("uptime:   %s\n", report.Uptime.Round(time.Second))
	}
	if report.Location != `` {
		fmt.Printf("location: %q\n", report.Location)
	}
	if report.Group != `` {
		fmt.Printf("group:    %q\n", report.Group)
	}
	if dev.HasInfrared() {
		fmt.Printf("infrared: %d\n", report.Infrared)
	}
	if dev.HasMatrix() {
		w, h := dev.MatrixSize()
		fmt.Printf("matrix:   %dx%d\n", w, h)
	}
	if len(report.Zones) > 0 {
		fmt.Printf("zones:    %d (effect: %s)\n", len(report.Zones), report.MultiZoneEffect)
	}
}

func runWaveform(c *cobra.Command, args []string) {
	if len(args) != 3 {
		c.Usage()
		logger.Fatalln(`Need a target, a waveform shape and a color`)
	}
	shapes := map[string]packet.Waveform{
		`saw`:      packet.WaveformSaw,
		`sine`:     packet.WaveformSine,
		`halfsine`: packet.WaveformHalfSine,
		`triangle`: packet.WaveformTriangle,
		`pulse`:    packet.WaveformPulse,
	}
	shape, ok := shapes[args[1]]
	if !ok {
		logger.WithField(`shape`, args[1]).Fatalln(`Unknown waveform shape`)
	}
	color, err := common.ParseColor(args[2], flagKelvin)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not parse color`)
	}
	discover()
	if err := client.SetWaveform(args[0], color, shape, flagPeriod, float32(flagCycles)); err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not start waveform`)
	}
}

func runEffect(c *cobra.Command, args []string) {
	if len(args) != 2 {
		c.Usage()
		logger.Fatalln(`Need a target and an effect name`)
	}
	discover()

	params := effects.Params{
		Period:  flagPeriod,
		Cycles:  flagCycles,
		Speed:   flagSpeed,
		Persist: flagPersist,
	}
	if err := client.RunEffect(args[0], args[1], params); err != nil {
		logger.WithFields(logrus.Fields{
			`effect`: args[1],
			`error`:  err,
		}).Fatalln(`Could not start effect`)
	}

	waitForEffect(args[0])
}

// waitForEffect blocks until the effect winds down on its own or the user
// interrupts, stopping the worker before exit either way.
func waitForEffect(target string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-sig:
			client.StopAllEffects()
			return
		case <-tick.C:
			if _, running := client.RunningEffect(target); !running {
				return
			}
		}
	}
}

func stopEffect(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing target`)
	}
	discover()
	if err := client.StopEffect(args[0]); err != nil {
		logger.WithField(`error`, err).Fatalln(`Could not stop effect`)
	}
}
