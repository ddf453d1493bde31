package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemVisits(t *testing.T) {
	// Arrange
	m := newMemVisits()
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); m.Visit("/") }()
		go func() { defer wg.Done(); m.Visit("/ping") }()
	}

	wg.Wait()
	home, err := m.Visit("/")
	require.Nil(t, err)
	total, err := m.Total()

	// Assert
	require.Nil(t, err)
	require.Equal(t, int64(51), home)
	require.Equal(t, int64(101), total)
}
