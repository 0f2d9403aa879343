package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Live provider integrations. Each fetcher normalizes the provider payload
// into the common Item schema; fetch-or-fallback policy lives in Resolver.

const (
	amadeusURL     = "https://test.api.amadeus.com"
	openWeatherURL = "https://api.openweathermap.org/data/2.5"
	wikipediaURL   = "https://en.wikipedia.org/w/api.php"

	userAgent = "tripflow/1.0 (travel planning demo)"
)

type liveClient struct {
	cfg         Config
	http        *http.Client
	amadeusBase string

	mu    sync.Mutex
	token string // cached Amadeus OAuth token, guarded by mu
}

func newLiveClient(cfg Config) *liveClient {
	return &liveClient{
		cfg:         cfg,
		http:        &http.Client{Timeout: longTimeout},
		amadeusBase: amadeusURL,
	}
}

func (c *liveClient) getJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Retryable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Retryable(err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Retryable(fmt.Errorf("GET %s returned %d", rawURL, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned %d: %.200s", rawURL, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed payload from %s: %w", rawURL, err)
	}
	return nil
}

// amadeusToken fetches (and caches) an OAuth2 client-credentials token.
// The flights and hotels fetchers run concurrently, so the mutex is held
// across the fetch and only one of them hits the token endpoint.
func (c *liveClient) amadeusToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.AmadeusClientID},
		"client_secret": {c.cfg.AmadeusClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.amadeusBase+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", Retryable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	c.token = payload.AccessToken
	return c.token, nil
}

// fetchFlights queries the Amadeus flight-offers endpoint.
func (c *liveClient) fetchFlights(ctx context.Context, q FlightQuery) ([]Item, error) {
	token, err := c.amadeusToken(ctx)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"originLocationCode":      {q.Origin.Code},
		"destinationLocationCode": {q.Dest.Code},
		"departureDate":           {q.DepartDate},
		"adults":                  {fmt.Sprint(max(q.Adults, 1))},
		"max":                     {"3"},
	}
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}

	var payload struct {
		Data []struct {
			Price struct {
				GrandTotal string `json:"grandTotal"`
				Total      string `json:"total"`
			} `json:"price"`
			Itineraries []struct {
				Segments []struct {
					CarrierCode string `json:"carrierCode"`
					Number      string `json:"number"`
					Departure   struct {
						IataCode string `json:"iataCode"`
						At       string `json:"at"`
					} `json:"departure"`
					Arrival struct {
						IataCode string `json:"iataCode"`
						At       string `json:"at"`
					} `json:"arrival"`
				} `json:"segments"`
			} `json:"itineraries"`
		} `json:"data"`
	}
	err = c.getJSON(ctx, c.amadeusBase+"/v2/shopping/flight-offers", params,
		map[string]string{"Authorization": "Bearer " + token}, &payload)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, 3)
	for _, offer := range payload.Data {
		if len(items) == 3 {
			break
		}
		price := offer.Price.GrandTotal
		if price == "" {
			price = offer.Price.Total
		}
		segs := make([]string, 0, 2)
		name := ""
		for _, itin := range offer.Itineraries {
			for _, seg := range itin.Segments {
				if name == "" {
					name = seg.CarrierCode + seg.Number
				}
				segs = append(segs, fmt.Sprintf("%s%s: %s %s -> %s %s",
					seg.CarrierCode, seg.Number,
					seg.Departure.IataCode, seg.Departure.At,
					seg.Arrival.IataCode, seg.Arrival.At))
			}
		}
		items = append(items, Item{
			Name:   name,
			Detail: strings.Join(segs, " | "),
			Price:  "$" + price,
			When:   q.DepartDate,
		})
	}
	return items, nil
}

// fetchHotels queries the Amadeus hotel-offers endpoint for the city code.
// Sandbox inventory coverage is checked upstream by the resolver.
func (c *liveClient) fetchHotels(ctx context.Context, q HotelQuery) ([]Item, error) {
	token, err := c.amadeusToken(ctx)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"cityCode":     {q.Dest.Code},
		"checkInDate":  {q.CheckIn},
		"checkOutDate": {q.CheckOut},
		"roomQuantity": {"1"},
		"adults":       {"1"},
		"bestRateOnly": {"true"},
	}

	var payload struct {
		Data []struct {
			Hotel struct {
				Name    string `json:"name"`
				Address struct {
					Lines []string `json:"lines"`
				} `json:"address"`
			} `json:"hotel"`
			Offers []struct {
				Price struct {
					Total string `json:"total"`
				} `json:"price"`
			} `json:"offers"`
		} `json:"data"`
	}
	err = c.getJSON(ctx, c.amadeusBase+"/v3/shopping/hotel-offers", params,
		map[string]string{"Authorization": "Bearer " + token}, &payload)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, 5)
	for _, entry := range payload.Data {
		if len(items) == 5 {
			break
		}
		price := ""
		if len(entry.Offers) > 0 {
			price = "$" + entry.Offers[0].Price.Total
		}
		items = append(items, Item{
			Name:   entry.Hotel.Name,
			Detail: strings.Join(entry.Hotel.Address.Lines, ", "),
			Price:  price,
			When:   q.CheckIn,
		})
	}
	return items, nil
}

// fetchWeather queries OpenWeather for current conditions or, when a date is
// given, the forecast entry closest to midday on that date.
func (c *liveClient) fetchWeather(ctx context.Context, q WeatherQuery) ([]Item, error) {
	params := url.Values{
		"q":     {q.Dest.City},
		"appid": {c.cfg.OpenWeatherAPIKey},
		"units": {"metric"},
	}

	if q.Date == "" {
		var payload struct {
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Humidity  int     `json:"humidity"`
			} `json:"main"`
		}
		if err := c.getJSON(ctx, openWeatherURL+"/weather", params, nil, &payload); err != nil {
			return nil, err
		}
		desc := "unknown"
		if len(payload.Weather) > 0 {
			desc = payload.Weather[0].Description
		}
		return []Item{{
			Name:   fmt.Sprintf("Current weather in %s", q.Dest.City),
			Detail: fmt.Sprintf("%s, %.1f°C (feels like %.1f°C), humidity %d%%", desc, payload.Main.Temp, payload.Main.FeelsLike, payload.Main.Humidity),
			When:   "now",
		}}, nil
	}

	target, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", q.Date)
	}
	var payload struct {
		List []struct {
			Dt      int64 `json:"dt"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
		} `json:"list"`
	}
	if err := c.getJSON(ctx, openWeatherURL+"/forecast", params, nil, &payload); err != nil {
		return nil, err
	}

	bestDiff := 24
	bestIdx := -1
	for i, entry := range payload.List {
		ts := time.Unix(entry.Dt, 0).UTC()
		if ts.Format("2006-01-02") != target.Format("2006-01-02") {
			continue
		}
		diff := ts.Hour() - 12
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, fmt.Errorf("no forecast available for %s (range ~5 days)", q.Date)
	}
	entry := payload.List[bestIdx]
	desc := "unknown"
	if len(entry.Weather) > 0 {
		desc = entry.Weather[0].Description
	}
	return []Item{{
		Name:   fmt.Sprintf("Forecast for %s on %s", q.Dest.City, q.Date),
		Detail: fmt.Sprintf("%s, %.1f°C, humidity %d%%", desc, entry.Main.Temp, entry.Main.Humidity),
		When:   q.Date,
	}}, nil
}

// fetchAttractions runs Wikipedia opensearch with a few query strategies,
// filtering disambiguation pages.
func (c *liveClient) fetchAttractions(ctx context.Context, q AttractionQuery) ([]Item, error) {
	city := q.Dest.City
	strategies := []string{
		city + " tourist attractions",
		"Tourism in " + city,
		city + " landmarks",
		city + " points of interest",
	}
	if len(q.Interests) > 0 {
		strategies = append([]string{city + " " + q.Interests[0]}, strategies...)
	}

	var lastErr error
	for _, query := range strategies {
		params := url.Values{
			"action": {"opensearch"},
			"search": {query},
			"limit":  {"8"},
			"format": {"json"},
		}
		var payload []json.RawMessage
		if err := c.getJSON(ctx, wikipediaURL, params, nil, &payload); err != nil {
			lastErr = err
			continue
		}
		// opensearch returns [query, [titles], [descriptions], [urls]]
		if len(payload) < 4 {
			lastErr = fmt.Errorf("unexpected opensearch shape (%d fields)", len(payload))
			continue
		}
		var titles, descriptions, urls []string
		if err := json.Unmarshal(payload[1], &titles); err != nil {
			lastErr = err
			continue
		}
		_ = json.Unmarshal(payload[2], &descriptions)
		_ = json.Unmarshal(payload[3], &urls)

		items := make([]Item, 0, 5)
		for i, title := range titles {
			if len(items) == 5 {
				break
			}
			desc := "No description"
			if i < len(descriptions) && descriptions[i] != "" {
				desc = descriptions[i]
			}
			if strings.Contains(strings.ToLower(title), "disambiguation") ||
				strings.Contains(strings.ToLower(desc), "may refer to") {
				continue
			}
			link := ""
			if i < len(urls) {
				link = urls[i]
			}
			items = append(items, Item{Name: title, Detail: desc + " — " + link})
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no usable results for %q", city)
	}
	return nil, lastErr
}
