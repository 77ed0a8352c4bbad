package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameStream(t *testing.T) {
	a := New(42, "environment")
	b := New(42, "environment")
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSaltsAreIndependent(t *testing.T) {
	a := ForPlant(42, 1)
	b := ForPlant(42, 2)
	same := 0
	for i := 0; i < 50; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 50)
}

func TestUniformBounds(t *testing.T) {
	src := New(7, "uniform")
	for i := 0; i < 1000; i++ {
		v := Uniform(src, 0.9, 1.1)
		assert.GreaterOrEqual(t, v, 0.9)
		assert.Less(t, v, 1.1)
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, int64(12), Resolve(12))
	assert.NotZero(t, Resolve(0))
}
