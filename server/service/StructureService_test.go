package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

func TestResolveReturnsOrderedStructure(t *testing.T) {
	client := newFakeCatalogClient()
	client.structures["DF_EMP"] = newStructureMessage("DF_EMP", []testDim{
		{key: "FREQ", codes: []string{"A", "Q"}},
		{key: "REF_AREA", codes: []string{"ITA", "FRA"}},
		{key: "SEX", codes: []string{"SEX_T", "SEX_F"}},
	})

	service := NewStructureService(client)

	flow, err := service.Resolve(context.Background(), "DF_EMP")
	require.NoError(t, err)

	assert.Equal(t, "DF_EMP name", flow.Label)
	assert.Equal(t, []string{"FREQ", "REF_AREA", "SEX"}, flow.Structure.Keys())

	for _, dimension := range flow.Structure.Dimensions {
		assert.NotEmpty(t, dimension.Values)
	}
}

func TestResolveServesSecondCallFromCache(t *testing.T) {
	client := newFakeCatalogClient()
	client.structures["DF_EMP"] = newStructureMessage("DF_EMP", []testDim{
		{key: "FREQ", codes: []string{"A"}},
	})

	service := NewStructureService(client)
	ctx := context.Background()

	first, err := service.Resolve(ctx, "DF_EMP")
	require.NoError(t, err)
	second, err := service.Resolve(ctx, "DF_EMP")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, client.getCalls["DF_EMP"])
}

func TestResolveCollapsesConcurrentFirstAccess(t *testing.T) {
	client := newFakeCatalogClient()
	client.structures["DF_EMP"] = newStructureMessage("DF_EMP", []testDim{
		{key: "FREQ", codes: []string{"A"}},
	})

	service := NewStructureService(client)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Resolve(context.Background(), "DF_EMP")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.getCalls["DF_EMP"])
}

func TestResolveUnknownDataflow(t *testing.T) {
	client := newFakeCatalogClient()
	service := NewStructureService(client)

	_, err := service.Resolve(context.Background(), "DF_MISSING")

	var notFound *data.StructureNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "DF_MISSING", notFound.Dataflow)
}

func TestResolveUnparsableStructure(t *testing.T) {
	client := newFakeCatalogClient()
	// A message without a data structure cannot be interpreted
	msg := newStructureMessage("DF_BROKEN", []testDim{{key: "FREQ", codes: []string{"A"}}})
	msg.Data.DataStructures = nil
	client.structures["DF_BROKEN"] = msg

	service := NewStructureService(client)

	_, err := service.Resolve(context.Background(), "DF_BROKEN")

	var notFound *data.StructureNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestConstraints(t *testing.T) {
	client := newFakeCatalogClient()
	client.structures["DF_EMP"] = newStructureMessage(
		"DF_EMP",
		[]testDim{{key: "FREQ", codes: []string{"A"}}},
		map[string][]string{"REF_AREA": {"ITA", "FRA"}},
	)

	service := NewStructureService(client)

	constraints, err := service.Constraints(context.Background(), "DF_EMP")
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	assert.Equal(t, []string{"ITA", "FRA"}, constraints[0].ContentRegions[0].Members["REF_AREA"])
}
