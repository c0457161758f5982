// Copyright (c) 2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package config holds the bench configuration: the feature modules of the build and the scripted
// verdicts of their emulators.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/machooks"
	. "github.com/openthread/ot-machooks/types"
)

const (
	DefaultLogLevel = "info"
	DefaultSeed     = 0
)

// FeatureConfig scripts the emulator of one feature module.
type FeatureConfig struct {
	Enabled bool `yaml:"enabled"`
	// Reject lists the veto event kinds (by name) that this feature always rejects.
	Reject []string `yaml:"reject,omitempty"`
	// RejectProbability is the chance that any other veto event is rejected.
	RejectProbability float64 `yaml:"reject-probability,omitempty"`
	// NotifyOnReject makes a pre-transmission rejection report the failure through the driver's notifier.
	NotifyOnReject bool `yaml:"notify-on-reject,omitempty"`
}

type FeaturesConfig struct {
	CsmaCa     FeatureConfig `yaml:"csma_ca"`
	AckTimeout FeatureConfig `yaml:"ack_timeout"`
	DelayedTrx FeatureConfig `yaml:"delayed_trx"`
	Ifs        FeatureConfig `yaml:"ifs"`
	TxTimeout  FeatureConfig `yaml:"tx_timeout"`
}

// Get returns the configuration of feature f.
func (fc *FeaturesConfig) Get(f Feature) *FeatureConfig {
	switch f {
	case FeatureCsmaCa:
		return &fc.CsmaCa
	case FeatureAckTimeout:
		return &fc.AckTimeout
	case FeatureDelayedTrx:
		return &fc.DelayedTrx
	case FeatureIfs:
		return &fc.Ifs
	case FeatureTxTimeout:
		return &fc.TxTimeout
	default:
		logger.Panicf("invalid feature: %d", int(f))
		return nil
	}
}

type Config struct {
	Features FeaturesConfig `yaml:"features"`
	LogLevel string         `yaml:"log-level"`
	// Pcap is the file that receives transmitted frames. Empty disables the capture.
	Pcap string `yaml:"pcap,omitempty"`
	// Seed is the root PRNG seed; 0 selects a time-based seed.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns a configuration with all feature modules enabled and approving everything.
func DefaultConfig() *Config {
	cfg := &Config{
		LogLevel: DefaultLogLevel,
		Seed:     DefaultSeed,
	}
	for _, f := range AllFeatures {
		cfg.Features.Get(f).Enabled = true
	}
	return cfg
}

// Parse reads a YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if _, err := logger.ParseLevelString(cfg.LogLevel); err != nil {
		return err
	}
	if !cfg.Features.TxTimeout.Enabled {
		return errors.Errorf("feature %s can not be disabled", FeatureTxTimeout)
	}
	for _, f := range AllFeatures {
		fc := cfg.Features.Get(f)
		if _, err := fc.RejectKinds(f); err != nil {
			return errors.Wrapf(err, "feature %s", f)
		}
		if fc.RejectProbability < 0 || fc.RejectProbability > 1 {
			return errors.Errorf("feature %s: reject-probability %v out of range [0, 1]", f, fc.RejectProbability)
		}
	}
	return nil
}

// RejectKinds returns the parsed Reject list of feature f. Only veto event kinds that f has a hook for
// can be rejected.
func (fc *FeatureConfig) RejectKinds(f Feature) ([]EventKind, error) {
	kinds := make([]EventKind, 0, len(fc.Reject))
	for _, name := range fc.Reject {
		kind, err := ParseEventKind(name)
		if err != nil {
			return nil, err
		}
		if kind.Policy() != PolicyVeto {
			return nil, errors.Errorf("event %s is a notification and can not be rejected", kind)
		}
		if !machooks.Contributes(f, kind) {
			return nil, errors.Errorf("feature %s has no %s hook", f, kind)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Marshal returns the YAML form of the configuration.
func (cfg *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
