package api

import (
	"testing"

	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	in := &SavePlanRequest{PlanID: "p1", BaseVersion: 3, Title: "t", Content: models.Content{Description: "d"}}
	raw, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"base_version":3`)

	var out SavePlanRequest
	require.NoError(t, c.Unmarshal(raw, &out))
	assert.Equal(t, *in, out)
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "ideaforge.v1.PlanService", PlanService_ServiceDesc.ServiceName)
	assert.Len(t, PlanService_ServiceDesc.Methods, 21)

	seen := map[string]bool{}
	for _, m := range PlanService_ServiceDesc.Methods {
		assert.False(t, seen[m.MethodName], "duplicate %s", m.MethodName)
		seen[m.MethodName] = true
	}
	for _, full := range []string{MethodCreatePlan, MethodSavePlan, MethodHeartbeat, MethodExportPlan} {
		assert.True(t, seen[full[len(MethodPrefix):]], full)
	}
	require.Len(t, PlanService_ServiceDesc.Streams, 1)
	assert.Equal(t, MethodWatch, MethodPrefix+PlanService_ServiceDesc.Streams[0].StreamName)
}
