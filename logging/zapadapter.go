// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import "go.uber.org/zap"

// FromZap adapts a *zap.SugaredLogger into an L. Its method set already
// matches L exactly (Error/Warn/Info/Debug and the f-variants), so this is
// a thin named-type wrapper rather than a translation layer.
func FromZap(sl *zap.SugaredLogger) L {
	if sl == nil {
		return Nop
	}
	return zapL{sl}
}

type zapL struct {
	sl *zap.SugaredLogger
}

func (z zapL) Error(args ...interface{}) { z.sl.Error(args...) }
func (z zapL) Warn(args ...interface{})  { z.sl.Warn(args...) }
func (z zapL) Info(args ...interface{})  { z.sl.Info(args...) }
func (z zapL) Debug(args ...interface{}) { z.sl.Debug(args...) }

func (z zapL) Errorf(fmt string, args ...interface{}) { z.sl.Errorf(fmt, args...) }
func (z zapL) Warnf(fmt string, args ...interface{})  { z.sl.Warnf(fmt, args...) }
func (z zapL) Infof(fmt string, args ...interface{})  { z.sl.Infof(fmt, args...) }
func (z zapL) Debugf(fmt string, args ...interface{}) { z.sl.Debugf(fmt, args...) }
