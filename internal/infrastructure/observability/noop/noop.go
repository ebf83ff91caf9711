// Package noop provides do-nothing Logger and Metrics implementations,
// used when a backend is not configured and as quiet dependencies in tests.
package noop

import (
	"github.com/Favour123/paystack-api/internal/application/ports"
)

type Logger struct{}

func NewLogger() *Logger { return &Logger{} }

func (Logger) Debug(msg string, fields ...interface{}) {}
func (Logger) Info(msg string, fields ...interface{})  {}
func (Logger) Warn(msg string, fields ...interface{})  {}
func (Logger) Error(msg string, fields ...interface{}) {}

func (l Logger) WithFields(fields map[string]interface{}) ports.Logger { return l }

type Metrics struct{}

func NewMetrics() *Metrics { return &Metrics{} }

func (Metrics) IncrementCounter(name string, tags map[string]string)                {}
func (Metrics) RecordHistogram(name string, value float64, tags map[string]string)  {}
func (Metrics) RecordGauge(name string, value float64, tags map[string]string)      {}
func (m Metrics) WithTags(tags map[string]string) ports.Metrics                     { return m }
