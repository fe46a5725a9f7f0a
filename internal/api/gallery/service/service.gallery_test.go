package gallerysvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

func TestLightbox(t *testing.T) {
	photos := []string{"a", "b", "c"}

	t.Run("navegação circular", func(t *testing.T) {
		lb := Open("7", photos, 0)
		assert.Equal(t, 1, lb.Next())
		assert.Equal(t, 2, lb.Prev())
		assert.Equal(t, "1 / 3", lb.Counter())

		lb = Open("7", photos, 2)
		assert.Equal(t, 0, lb.Next())
		assert.Equal(t, "3 / 3", lb.Counter())
		assert.Equal(t, "c", lb.Current())
	})

	t.Run("índice limitado", func(t *testing.T) {
		assert.Equal(t, 2, Open("7", photos, 10).Index)
		assert.Equal(t, 0, Open("7", photos, -1).Index)
	})

	t.Run("sem fotos", func(t *testing.T) {
		lb := Open("7", nil, 3)
		assert.Equal(t, 0, lb.Next())
		assert.Equal(t, "", lb.Current())
		assert.Equal(t, "0 / 0", lb.Counter())
		assert.False(t, lb.HasMany())
	})

	t.Run("links", func(t *testing.T) {
		lb := Open("7", photos, 1)
		assert.Equal(t, "/fotos/7/2", lb.ViewURL(lb.Next()))
		assert.Equal(t, "/fotos/7/1/download", lb.DownloadURL())
	})

	t.Run("ID escapado no caminho", func(t *testing.T) {
		lb := Open("a/b c", photos, 0)
		assert.Equal(t, "/fotos/a%2Fb%20c/1", lb.ViewURL(1))
		assert.Equal(t, "/fotos/a%2Fb%20c/0/download", lb.DownloadURL())
	})
}

func TestDownloadName(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "foto_relatorio_1_2024-03-05.jpg", DownloadName(0, now))
	assert.Equal(t, "foto_relatorio_3_2024-03-05.jpg", DownloadName(2, now))
}

type fakeBackend struct{ report relatorio.Report }

func (f fakeBackend) GetReport(context.Context, string, string) (relatorio.Report, error) {
	return f.report, nil
}

func TestDownload(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/foto.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer store.Close()

	svc := NewGalleryService(fakeBackend{report: relatorio.Report{
		ID:     "7",
		Photos: []string{store.URL + "/foto.png", store.URL + "/sumiu.png"},
	}}, 5*time.Second)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	p, err := svc.Download(context.Background(), "", "7", 0, now)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), p.Body)
	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, "foto_relatorio_1_2024-03-05.jpg", p.FileName)

	_, err = svc.Download(context.Background(), "", "7", 1, now)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, err = svc.Download(context.Background(), "", "7", 5, now)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}
