package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketForClampsNegativeToFirst(t *testing.T) {
	assert.Equal(t, 0, BucketFor(EVEBuckets, -5))
}

func TestBucketForOpenEndedLastBucket(t *testing.T) {
	idx := BucketFor(EVEBuckets, 50)
	assert.Equal(t, len(EVEBuckets)-1, idx)
	assert.Equal(t, "20Y_PLUS", EVEBuckets[idx].Label)
}

func TestBucketForBoundaryIsExclusiveUpper(t *testing.T) {
	// Exactly 1 year is 9M_1Y's exclusive Upper, so t=1 lands in the next
	// bucket, 1Y_1.5Y.
	idx := BucketFor(EVEBuckets, 1.0)
	assert.Equal(t, "1Y_1.5Y", EVEBuckets[idx].Label)
}

func TestBucketForEveryBandCoversItsMidpoint(t *testing.T) {
	for i, b := range EVEBuckets {
		// The open-ended bucket's Representative (10y) is a fixed value,
		// not a point inside [Lower, Upper) — skip it here.
		if b.Representative < b.Lower || b.Representative >= b.Upper {
			continue
		}
		got := BucketFor(EVEBuckets, b.Representative)
		assert.Equal(t, i, got, "bucket %s representative point should resolve to itself", b.Label)
	}
}

func TestBucketLabelMatchesBucketFor(t *testing.T) {
	assert.Equal(t, EVEBuckets[BucketFor(EVEBuckets, 4.2)].Label, BucketLabel(EVEBuckets, 4.2))
}

func TestVisualizationBucketsCoarserThanEVEBuckets(t *testing.T) {
	assert.Less(t, len(VisualizationBuckets), len(EVEBuckets))
}

func TestEVEBucketsGridIsContiguous(t *testing.T) {
	for i := 1; i < len(EVEBuckets); i++ {
		assert.Equal(t, EVEBuckets[i-1].Upper, EVEBuckets[i].Lower, "gap or overlap before bucket %s", EVEBuckets[i].Label)
	}
}
