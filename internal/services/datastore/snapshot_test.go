package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// R1: framing the entire store and applying it to an empty replica
// yields the same content, verified through the checksum discipline.
func TestEntireSnapshot_ReplicaRoundTrip(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	snapshot := svc.EntireSnapshot()
	decoded, err := schemas.UnmarshalAllDeltas(snapshot.Marshal())
	require.NoError(t, err)

	replica := schemas.NewStore()
	missed := replica.Apply(decoded)
	assert.Empty(t, missed)

	for _, entityType := range []string{
		schemas.TasksType,
		schemas.TaskProxiesType,
		schemas.FamiliesType,
		schemas.FamilyProxiesType,
		schemas.JobsType,
		schemas.EdgesType,
	} {
		assert.ElementsMatch(t,
			svc.data.Stamps(entityType), replica.Stamps(entityType), entityType)
		assert.Equal(t,
			schemas.GenerateChecksum(svc.data.Stamps(entityType)),
			schemas.GenerateChecksum(replica.Stamps(entityType)), entityType)
	}
	assert.Equal(t, svc.data.Workflow.ID, replica.Workflow.ID)
	assert.Equal(t, svc.data.Workflow.StateTotals, replica.Workflow.StateTotals)
	assert.ElementsMatch(t, svc.data.Workflow.TaskProxies, replica.Workflow.TaskProxies)
}

// I6: published checksums match a recomputation over the applied store.
func TestPublishChecksumsMatchStore(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	batch := svc.PublishDeltas()
	require.NotNil(t, batch)
	require.NotNil(t, batch.TaskProxies)
	assert.Equal(t,
		schemas.GenerateChecksum(svc.data.Stamps(schemas.TaskProxiesType)),
		batch.TaskProxies.Checksum)
}

// Replica applies the published incremental batches and stays in sync.
func TestIncrementalReplicaStaysInSync(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	replica := schemas.NewStore()

	apply := func() {
		batch := svc.PublishDeltas()
		if batch == nil {
			return
		}
		decoded, err := schemas.UnmarshalAllDeltas(batch.Marshal())
		require.NoError(t, err)
		replica.Apply(decoded)
	}

	// Initial definitions batch.
	apply()

	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()
	apply()

	foo.State = models.TaskStateSucceeded
	svc.DeltaTaskState(foo)
	svc.Update()
	apply()

	assert.Equal(t,
		schemas.GenerateChecksum(svc.data.Stamps(schemas.TaskProxiesType)),
		schemas.GenerateChecksum(replica.Stamps(schemas.TaskProxiesType)))
	tp := replica.TaskProxies["~bob/flow//1/foo"]
	require.NotNil(t, tp)
	require.NotNil(t, tp.State)
	assert.Equal(t, models.TaskStateSucceeded, *tp.State)
}
