package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OKPage(c, []string{"a", "b"}, 21, 1, 10)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.Data.Pagination.TotalPages)
	}
}

func TestErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid", []string{"startDate"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != 10001 || resp.Details == nil {
		t.Errorf("unexpected response: %+v", resp)
	}
}
