// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package repositories

import (
	"testing"

	"linklift/internal/database/models"
)

func TestShortURLRepo_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewShortURLRepository(db)

	url := &models.ShortURL{Code: "abc123", OriginalURL: "https://example.org/long", UserID: 1, TeamID: 1}
	if err := repo.Create(url); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByCode("abc123")
	if err != nil {
		t.Fatalf("FindByCode failed: %v", err)
	}
	if found.OriginalURL != "https://example.org/long" {
		t.Errorf("Unexpected original URL: %q", found.OriginalURL)
	}

	if _, err := repo.FindByCode("missing"); err == nil {
		t.Error("Expected error for unknown code")
	}
}

func TestShortURLRepo_DuplicateCodeRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewShortURLRepository(db)

	if err := repo.Create(&models.ShortURL{Code: "dup1", OriginalURL: "https://a.example", UserID: 1, TeamID: 1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(&models.ShortURL{Code: "dup1", OriginalURL: "https://b.example", UserID: 1, TeamID: 1}); err == nil {
		t.Error("Expected unique constraint violation for duplicate code")
	}
}

func TestShortURLRepo_IncrementClickCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewShortURLRepository(db)

	url := &models.ShortURL{Code: "cnt1", OriginalURL: "https://example.org", UserID: 1, TeamID: 1}
	if err := repo.Create(url); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementClickCount(url.ID); err != nil {
			t.Fatalf("IncrementClickCount failed: %v", err)
		}
	}

	found, err := repo.FindByCode("cnt1")
	if err != nil {
		t.Fatalf("FindByCode failed: %v", err)
	}
	if found.ClickCount != 3 {
		t.Errorf("Expected click count 3, got %d", found.ClickCount)
	}
}
