package itest

import (
	"net/http"
	"testing"
)

// TestShareFlow_ITest walks the whole advisor/client loop over HTTP: build a
// trip with a variant segment, share it, let the client pick and submit a
// variant, approve the version, and check the advisor sees the approval.
func TestShareFlow_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)
			advisor := "itest|morgan"

			// Missing auth => 401.
			{
				status, body := srv.doJSON(t, http.MethodGet, "/trips", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
			}

			// Create a trip; a primary version comes with it.
			var created struct {
				ID               string `json:"id"`
				PrimaryVersionID string `json:"primaryVersionId"`
			}
			{
				status, body := srv.doJSON(t, http.MethodPost, "/trips", advisor, map[string]any{
					"name":     "Lisbon long weekend",
					"budget":   2500,
					"currency": "EUR",
				})
				requireStatus(t, status, body, http.StatusCreated)
				created = mustUnmarshal[struct {
					ID               string `json:"id"`
					PrimaryVersionID string `json:"primaryVersionId"`
				}](t, body)
			}
			tripID, versionID := created.ID, created.PrimaryVersionID

			// Add a hotel with an upgrade variant.
			var segment struct {
				Segment struct {
					ID string `json:"id"`
				} `json:"segment"`
			}
			{
				status, body := srv.doJSON(t, http.MethodPost, "/trips/"+tripID+"/versions/"+versionID+"/segments", advisor, map[string]any{
					"type":      "hotel",
					"dayNumber": 1,
					"title":     "Bairro Alto Hotel",
					"cost":      540,
				})
				requireStatus(t, status, body, http.StatusCreated)
				segment = mustUnmarshal[struct {
					Segment struct {
						ID string `json:"id"`
					} `json:"segment"`
				}](t, body)
			}
			var variant struct {
				Variant struct {
					ID string `json:"id"`
				} `json:"variant"`
			}
			{
				status, body := srv.doJSON(t, http.MethodPost, "/trips/"+tripID+"/segments/"+segment.Segment.ID+"/variants", advisor, map[string]any{
					"label":       "River-view suite",
					"variantType": "upgrade",
					"cost":        780,
				})
				requireStatus(t, status, body, http.StatusCreated)
				variant = mustUnmarshal[struct {
					Variant struct {
						ID string `json:"id"`
					} `json:"variant"`
				}](t, body)
			}

			// Share the trip.
			var share struct {
				Enabled bool   `json:"enabled"`
				Token   string `json:"token"`
			}
			{
				status, body := srv.doJSON(t, http.MethodPost, "/trips/"+tripID+"/share", advisor, nil)
				requireStatus(t, status, body, http.StatusOK)
				share = mustUnmarshal[struct {
					Enabled bool   `json:"enabled"`
					Token   string `json:"token"`
				}](t, body)
				if !share.Enabled || share.Token == "" {
					t.Fatalf("sharing not enabled: %+v", share)
				}
			}

			// No token and wrong token are both access problems.
			{
				status, body := srv.doShareJSON(t, http.MethodGet, "/share/trip", "", nil)
				requireErrorCode(t, status, body, http.StatusForbidden, "SHARE_TOKEN_REQUIRED")

				status, body = srv.doShareJSON(t, http.MethodGet, "/share/trip", "wrong-token", nil)
				requireErrorCode(t, status, body, http.StatusForbidden, "SHARE_TOKEN_INVALID")
			}

			// Client views the trip.
			{
				status, body := srv.doShareJSON(t, http.MethodGet, "/share/trip", share.Token, nil)
				requireStatus(t, status, body, http.StatusOK)
				view := mustUnmarshal[struct {
					Trip struct {
						TripID     string `json:"tripId"`
						Approved   bool   `json:"approved"`
						Selections []struct {
							SegmentID string `json:"segmentId"`
							Submitted bool   `json:"submitted"`
						} `json:"selections"`
					} `json:"trip"`
				}](t, body)
				if view.Trip.TripID != tripID || len(view.Trip.Selections) != 1 {
					t.Fatalf("unexpected client view: %s", string(body))
				}
			}

			// Client picks the variant and submits.
			{
				status, body := srv.doShareJSON(t, http.MethodPut, "/share/segments/"+segment.Segment.ID+"/selection", share.Token, map[string]any{
					"variantId": variant.Variant.ID,
				})
				requireStatus(t, status, body, http.StatusOK)

				status, body = srv.doShareJSON(t, http.MethodPost, "/share/selections/submit", share.Token, map[string]any{})
				requireStatus(t, status, body, http.StatusOK)
				sub := mustUnmarshal[struct {
					Submission struct {
						LockedSegmentIDs []string `json:"lockedSegmentIds"`
					} `json:"submission"`
				}](t, body)
				if len(sub.Submission.LockedSegmentIDs) != 1 {
					t.Fatalf("expected one locked segment, body=%s", string(body))
				}
			}

			// Locked selections ignore further changes.
			{
				status, body := srv.doShareJSON(t, http.MethodPut, "/share/segments/"+segment.Segment.ID+"/selection", share.Token, map[string]any{
					"variantId": nil,
				})
				requireStatus(t, status, body, http.StatusOK)
				sel := mustUnmarshal[struct {
					Selection struct {
						SelectedVariantID *string `json:"selectedVariantId"`
						Submitted         bool    `json:"submitted"`
					} `json:"selection"`
				}](t, body)
				if !sel.Selection.Submitted || sel.Selection.SelectedVariantID == nil {
					t.Fatalf("locked choice should be unchanged, body=%s", string(body))
				}
			}

			// Client approves.
			{
				status, body := srv.doShareJSON(t, http.MethodPost, "/share/approval", share.Token, map[string]any{})
				requireStatus(t, status, body, http.StatusOK)
			}

			// Advisor sees the approval on the trip.
			{
				status, body := srv.doJSON(t, http.MethodGet, "/trips/"+tripID, advisor, nil)
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[struct {
					Trip struct {
						ApprovedVersionID *string `json:"approvedVersionId"`
					} `json:"trip"`
				}](t, body)
				if got.Trip.ApprovedVersionID == nil || *got.Trip.ApprovedVersionID != versionID {
					t.Fatalf("approval not visible to advisor, body=%s", string(body))
				}
			}

			// Another advisor cannot see the trip at all.
			{
				status, body := srv.doJSON(t, http.MethodGet, "/trips/"+tripID, "itest|rival", nil)
				requireErrorCode(t, status, body, http.StatusNotFound, "TRIP_NOT_FOUND")
			}

			// Revoking sharing cuts the client off.
			{
				status, body := srv.doJSON(t, http.MethodDelete, "/trips/"+tripID+"/share", advisor, nil)
				requireStatus(t, status, body, http.StatusOK)

				status, body = srv.doShareJSON(t, http.MethodGet, "/share/trip", share.Token, nil)
				requireErrorCode(t, status, body, http.StatusForbidden, "SHARE_TOKEN_INVALID")
			}
		})
	}
}
