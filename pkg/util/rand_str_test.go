package util

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandStr(t *testing.T) {
	s := RandStr(10)
	assert.Len(t, s, 10)

	for _, r := range s {
		assert.True(t, strings.ContainsRune(charset, r))
	}
}

func TestRandStrConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Len(t, RandStr(8), 8)
			}
		}()
	}
	wg.Wait()
}
