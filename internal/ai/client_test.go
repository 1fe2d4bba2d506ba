package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"retail-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n"), 0o644))
	return path
}

func predictorStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("sales")
		assert.NoError(t, err, "sales file part should be present")
		_, _, err = r.FormFile("products")
		assert.NoError(t, err, "products file part should be present")

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientPredictTopLevelShape(t *testing.T) {
	srv := predictorStub(t, http.StatusOK,
		`{"predictions":[{"product":"Milk","reorder_qty":12}],"chart_data":[{"x":1}]}`)

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Predict(context.Background(),
		writeTempCSV(t, "sales.csv"), writeTempCSV(t, "products.csv"))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"product":"Milk","reorder_qty":12}]`, string(result.Predictions))
	assert.JSONEq(t, `[{"x":1}]`, string(result.ChartData))
}

func TestClientPredictNestedShape(t *testing.T) {
	srv := predictorStub(t, http.StatusOK,
		`{"success":true,"data":{"predictions":[{"product":"Milk"}],"chart_data":[]},"savedId":7}`)

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Predict(context.Background(),
		writeTempCSV(t, "sales.csv"), writeTempCSV(t, "products.csv"))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"product":"Milk"}]`, string(result.Predictions))
}

func TestClientPredictContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-JSON body", http.StatusOK, "<html>oops</html>"},
		{"missing predictions", http.StatusOK, `{"message":"done"}`},
		{"reported failure", http.StatusOK, `{"success":false,"error":"bad input"}`},
		{"http error", http.StatusInternalServerError, `{"error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := predictorStub(t, tt.status, tt.body)
			client := NewClient(srv.URL, 5*time.Second)

			_, err := client.Predict(context.Background(),
				writeTempCSV(t, "sales.csv"), writeTempCSV(t, "products.csv"))
			assert.ErrorIs(t, err, ErrPredictorContract)
		})
	}
}

func TestPipelineRunPersistsPrediction(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Product{
		Name: "Milk", Quantity: 7, Price: 2.0,
		ExpiryDate: time.Now().AddDate(0, 1, 0), Supplier: "Acme",
	}).Error)

	srv := predictorStub(t, http.StatusOK,
		`{"predictions":[{"product":"Milk","reorder_qty":12}],"chart_data":[{"x":1}]}`)

	pipeline := NewPipeline(db, NewExporter(db, t.TempDir()), NewClient(srv.URL, 5*time.Second))
	prediction, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.NotZero(t, prediction.ID)

	var stored models.Prediction
	require.NoError(t, db.First(&stored, prediction.ID).Error)
	assert.JSONEq(t, `[{"product":"Milk","reorder_qty":12}]`, stored.Predictions)
	assert.JSONEq(t, `[{"x":1}]`, stored.ChartData)
	assert.Equal(t, "sales.csv", stored.SalesFileName)
}

func TestPipelineRunFailurePersistsNothing(t *testing.T) {
	db := newTestDB(t)

	srv := predictorStub(t, http.StatusOK, "not json at all")

	pipeline := NewPipeline(db, NewExporter(db, t.TempDir()), NewClient(srv.URL, 5*time.Second))
	_, err := pipeline.Run(context.Background())
	assert.ErrorIs(t, err, ErrPredictorContract)

	var count int64
	require.NoError(t, db.Model(&models.Prediction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
