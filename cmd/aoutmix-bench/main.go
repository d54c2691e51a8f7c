// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command aoutmix-bench drives a core.Mixer against one or more Vorbis
// file inputs described by a static SDP, logging the final Stats once all
// ticks have run. It exists to exercise the mixer end-to-end without a live
// RTP source.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pion/sdp/v3"
	"github.com/spf13/pflag"

	"github.com/livekit/aoutmix/core"
	"github.com/livekit/aoutmix/ingest"
	"github.com/livekit/aoutmix/kernel"
	"github.com/livekit/protocol/logger"
)

func main() {
	sdpPath := pflag.StringP("sdp", "s", "", "path to a static SDP file describing input clock rates")
	inputs := pflag.StringArrayP("input", "i", nil, "path to an Ogg/Vorbis file, one per SDP m=audio section, in order")
	blockSamples := pflag.IntP("block-samples", "b", 1024, "output block size in samples")
	rate := pflag.IntP("rate", "r", 48000, "mixer output sample rate")
	ticks := pflag.IntP("ticks", "t", 100, "number of Run ticks to drive before exiting")
	help := pflag.BoolP("help", "h", false, "display help text")
	pflag.Parse()

	if *help || *sdpPath == "" || len(*inputs) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	log := logger.GetLogger()

	clockRates, err := parseSDPClockRates(*sdpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aoutmix-bench: %v\n", err)
		os.Exit(1)
	}
	if len(clockRates) != len(*inputs) {
		fmt.Fprintf(os.Stderr, "aoutmix-bench: sdp describes %d audio sections but got %d --input flags\n", len(clockRates), len(*inputs))
		os.Exit(2)
	}

	format := core.Format{BytesPerFrame: 2, FrameLength: 1, Rate: uint32(*rate), Linear: true}
	sink := &loggingSink{log: log}
	m := core.NewMixer(format, core.SystemClock{}, log, sink, int64(*blockSamples), 1.0)

	reg := kernel.NewRegistry(nil)
	if err := m.Attach(reg); err != nil {
		fmt.Fprintf(os.Stderr, "aoutmix-bench: attach: %v\n", err)
		os.Exit(1)
	}

	for i, path := range *inputs {
		input := m.AddInput()
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "aoutmix-bench: open %s: %v\n", path, err)
			os.Exit(1)
		}
		src, err := ingest.NewVorbisFileSource(log, input, f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "aoutmix-bench: decode %s: %v\n", path, err)
			os.Exit(1)
		}
		src.PushAll(0, *blockSamples)
		log.Infow("loaded input", "index", i, "path", path, "sdpClockRate", clockRates[i])
	}

	for i := 0; i < *ticks; i++ {
		m.Run()
		time.Sleep(time.Duration(*blockSamples) * time.Second / time.Duration(*rate))
	}

	s := m.Stats()
	log.Infow("final stats",
		"mixes", s.Mixes.Load(),
		"notReady", s.NotReady.Load(),
		"lateResets", s.LateResets.Load(),
		"staleDrops", s.StaleDrops.Load(),
		"gapDrops", s.GapDrops.Load(),
		"cursorDrifts", s.CursorDrifts.Load(),
	)
}

type loggingSink struct {
	log   logger.Logger
	count int
}

func (s *loggingSink) PlayBlock(buf *core.Buffer) error {
	s.count++
	return nil
}

func (s *loggingSink) Clear() {
	s.log.Infow("output cleared", "blocksPlayedBeforeClear", s.count)
	s.count = 0
}

// parseSDPClockRates reads a static SDP file and returns the clock rate of
// each m=audio section's first codec, in order. There is no offer/answer
// negotiation; the bench tool checks the section count against the inputs
// and logs each input's clock rate.
func parseSDPClockRates(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sdp: %w", err)
	}

	var sd sdp.SessionDescription
	if err := sd.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("parse sdp: %w", err)
	}

	var rates []int
	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != "audio" {
			continue
		}
		for _, attr := range md.Attributes {
			if attr.Key != "rtpmap" {
				continue
			}
			rate := rtpmapClockRate(attr.Value)
			if rate > 0 {
				rates = append(rates, rate)
				break
			}
		}
	}
	return rates, nil
}

// rtpmapClockRate extracts the clock rate from an "a=rtpmap" value of the
// form "<payload> <codec>/<clockRate>[/<channels>]".
func rtpmapClockRate(value string) int {
	var codec string
	for i := 0; i < len(value); i++ {
		if value[i] == ' ' {
			codec = value[i+1:]
			break
		}
	}
	slash := -1
	for i := 0; i < len(codec); i++ {
		if codec[i] == '/' {
			slash = i
			break
		}
	}
	if slash < 0 {
		return 0
	}
	rest := codec[slash+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			rest = rest[:i]
			break
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}
