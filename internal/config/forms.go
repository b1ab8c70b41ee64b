package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Completion policies accepted by forms.completionPolicy.
const (
	CompletionPolicySubmitted = "submitted"
	CompletionPolicyAccepted  = "accepted"
)

// FormPolicy is the operator-tunable part of form handling: which daily
// statuses count toward monthly completion, the allowed bulk outtake
// choices, and the required-field sets applied to branches without their
// own configuration.
type FormPolicy struct {
	CompletionPolicy   string              `mapstructure:"completionPolicy"`
	BulkOuttakeOptions []string            `mapstructure:"bulkOuttakeOptions"`
	DefaultRequired    DefaultRequiredSets `mapstructure:"defaultRequired"`
}

type DefaultRequiredSets struct {
	Daily   []string `mapstructure:"daily"`
	Monthly []string `mapstructure:"monthly"`
}

func DefaultFormPolicy() FormPolicy {
	return FormPolicy{
		CompletionPolicy:   CompletionPolicySubmitted,
		BulkOuttakeOptions: []string{"WTP", "Distribution Line"},
		DefaultRequired: DefaultRequiredSets{
			Daily:   []string{"productionVolume", "operationHours"},
			Monthly: []string{"electricityCost"},
		},
	}
}

// FormPolicyHolder serves the current FormPolicy and hot-reloads it when
// forms.yml changes on disk.
type FormPolicyHolder struct {
	current atomic.Value // holds FormPolicy
}

func NewFormPolicyHolder() (*FormPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("forms")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/waterworks/config")
	v.AddConfigPath("/etc/waterworks")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WATERWORKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultFormPolicy()
		v.SetDefault("forms.completionPolicy", defaults.CompletionPolicy)
		v.SetDefault("forms.bulkOuttakeOptions", defaults.BulkOuttakeOptions)
		v.SetDefault("forms.defaultRequired.daily", defaults.DefaultRequired.Daily)
		v.SetDefault("forms.defaultRequired.monthly", defaults.DefaultRequired.Monthly)
	}

	var policy FormPolicy
	if err := v.UnmarshalKey("forms", &policy); err != nil {
		return nil, err
	}
	if err := validateFormPolicy(policy); err != nil {
		return nil, err
	}

	holder := &FormPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FormPolicy
		if err := v.UnmarshalKey("forms", &updated); err != nil {
			log.Printf("[form-policy] reload failed: %v", err)
			return
		}
		if err := validateFormPolicy(updated); err != nil {
			log.Printf("[form-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[form-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *FormPolicyHolder) Get() FormPolicy {
	return h.current.Load().(FormPolicy)
}

// NewStaticFormPolicyHolder wraps a fixed policy, for tests.
func NewStaticFormPolicyHolder(policy FormPolicy) *FormPolicyHolder {
	holder := &FormPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateFormPolicy(policy FormPolicy) error {
	switch policy.CompletionPolicy {
	case CompletionPolicySubmitted, CompletionPolicyAccepted:
	default:
		return errors.New("forms.completionPolicy must be submitted or accepted")
	}
	if len(policy.BulkOuttakeOptions) == 0 {
		return errors.New("forms.bulkOuttakeOptions cannot be empty")
	}
	return nil
}
