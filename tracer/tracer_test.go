// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlush(t *testing.T) {
	Reset()
	Log("one")
	Log("two")
	assert.Equal(t, []string{"one", "two"}, Messages())

	var buf bytes.Buffer
	require.NoError(t, Flush(&buf))
	assert.Equal(t, "one\ntwo\n", buf.String())
	assert.Empty(t, Messages())
}

func TestLog_Concurrent(t *testing.T) {
	Reset()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				Log("x")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, Messages(), 800)
	Reset()
	assert.Empty(t, Messages())
}
