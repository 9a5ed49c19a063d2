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
package api

import (
	"linklift/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Links     *handlers.LinkHandler
	Analytics *handlers.AnalyticsHandler
	Rewards   *handlers.RewardsHandler
	System    *handlers.SystemHandler
}

// NewRouter builds the gin engine. Short code redirects live at the
// root so links stay short; everything else is under /api.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/health", h.System.GetHealth)
		api.GET("/system/stats", h.System.GetSystemStats)

		api.POST("/urls", h.Links.CreateShortURL)

		teams := api.Group("/teams/:id")
		{
			teams.GET("/urls", h.Links.ListURLs)
			teams.DELETE("/urls/:code", h.Links.DeleteURL)

			teams.GET("/analytics/countries", h.Analytics.GetCountries)
			teams.GET("/analytics/referrers", h.Analytics.GetReferrers)
			teams.GET("/analytics/totals", h.Analytics.GetTotals)

			teams.GET("/earnings", h.Rewards.GetEarnings)
			teams.GET("/reward-tiers", h.Rewards.GetRewardTiers)
			teams.PUT("/reward-tiers", h.Rewards.PutRewardTiers)
		}
	}

	router.GET("/:code", h.Links.Redirect)

	return router
}
