package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAWS_Create(t *testing.T) {
	ts := newTestServer(t)
	ts.handle(t, "/aws/create", http.StatusOK, map[string]any{"success": true, "result": map[string]any{"ids": []string{"i-1"}}})

	a, _ := ts.registry(WithAWSRegion("eu-west-1")).Adapter(AWS)
	res := a.Create(context.Background(), SizingSpec{Name: "api", MachineType: "t3.micro", Count: 2, SoftwareStack: "k3s"})
	require.True(t, res.Success)
	assert.NotEmpty(t, res.Raw)

	assert.Equal(t, map[string]any{
		"name": "api", "instance_type": "t3.micro", "region": "eu-west-1",
		"min_count": float64(2), "max_count": float64(2), "cluster_type": "k3s",
	}, ts.lastBody("/aws/create"))
}

func TestAWS_List(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/api/aws/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us-east-1", r.URL.Query().Get("region"))
		jsonResponse(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   3,
			"instances": []map[string]any{
				{
					"InstanceId":      "i-0aaa",
					"Name":            "api-1",
					"State":           map[string]any{"Name": "running"},
					"PublicIpAddress": "3.3.3.3",
					"InstanceType":    "t3.micro",
					"Placement":       map[string]any{"AvailabilityZone": "us-east-1b"},
					"cpu":             2,
					"ram":             1,
					"Tags":            []map[string]string{{"Key": "Cluster", "Value": "api"}},
				},
				{
					"InstanceId": "i-0bbb",
					"State":      map[string]any{"Name": "stopped"},
					"Tags":       []map[string]string{{"Key": "Name", "Value": "worker-2"}},
				},
				{
					"InstanceId": "i-0ccc",
					"State":      map[string]any{"Name": "pending"},
				},
			},
		})
	})

	a, _ := ts.registry().Adapter(AWS)
	got, err := a.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Instance{
		ID: "i-0aaa", Name: "api-1", Provider: AWS, Status: StatusRunning, Location: "us-east-1",
		CPU: 2, RAMGB: 1, PublicIPs: []string{"3.3.3.3"}, MachineType: "t3.micro", ClusterTag: "api",
	}, got[0])

	assert.Equal(t, "worker-2", got[1].Name)
	assert.Equal(t, StatusStopped, got[1].Status)
	assert.Equal(t, "us-east-1", got[1].Location)

	assert.Equal(t, "i-0ccc", got[2].Name)
	assert.Equal(t, StatusUnknown, got[2].Status)
	assert.Equal(t, "i-0ccc", got[2].Target())
}

func TestAWS_Actions(t *testing.T) {
	ts := newTestServer(t)
	ts.handle(t, "/action/start", http.StatusOK, map[string]any{"success": true})
	ts.handle(t, "/action/stop", http.StatusOK, map[string]any{"success": false, "error": "IncorrectInstanceState"})
	ts.handle(t, "/aws/delete", http.StatusOK, map[string]any{"success": true})

	a, _ := ts.registry().Adapter(AWS)
	ctx := context.Background()

	assert.True(t, a.Start(ctx, "i-0aaa", "eu-west-3").Success)
	assert.Equal(t, map[string]any{"provider": "aws", "id": "i-0aaa", "region": "eu-west-3"}, ts.lastBody("/action/start"))

	res := a.Stop(ctx, "i-0aaa", "")
	assert.False(t, res.Success)
	assert.Equal(t, "IncorrectInstanceState", res.Error)
	assert.Equal(t, "us-east-1", ts.lastBody("/action/stop")["region"])

	assert.True(t, a.Delete(ctx, "i-0aaa", "").Success)
	assert.Equal(t, map[string]any{"provider": "aws", "id": "i-0aaa", "region": "us-east-1"}, ts.lastBody("/aws/delete"))
}
