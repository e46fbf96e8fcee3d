package conn_test

import (
	"testing"

	. "github.com/10gen/mongo-go-driver/conn"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_Canonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint Endpoint
		expected Endpoint
	}{
		{"lowercases host", "LOCALHOST:27017", "localhost:27017"},
		{"adds default port", "localhost", "localhost:27017"},
		{"leaves port alone", "localhost:27018", "localhost:27018"},
		{"leaves unix sockets alone", "/tmp/mongodb-27017.sock", "/tmp/mongodb-27017.sock"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.endpoint.Canonicalize())
		})
	}
}
