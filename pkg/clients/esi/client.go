package esi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var backoffSchedule = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	10 * time.Second,
}

type EsiClient struct {
	httpClient *http.Client
	BaseUrl    string
	Logger     *zap.Logger
}

type CharacterInfo struct {
	Name          string `json:"name"`
	CorporationID int64  `json:"corporation_id"`
	AllianceID    int64  `json:"alliance_id"`
}

type CorporationInfo struct {
	Name       string `json:"name"`
	Ticker     string `json:"ticker"`
	AllianceID int64  `json:"alliance_id"`
}

type AllianceInfo struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

func NewEsiClient(hc *http.Client, baseUrl string, l *zap.Logger) *EsiClient {
	return &EsiClient{
		httpClient: hc,
		BaseUrl:    baseUrl,
		Logger:     l,
	}
}

func (ec *EsiClient) makeRequest(method string, path string, body []byte, bearerToken string) ([]byte, error) {
	fullUrl := fmt.Sprintf("%s%s", ec.BaseUrl, path)

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, fullUrl, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the ESI HTTP request")
	}

	req.Header.Set("User-Agent", "bravebucks")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if bearerToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearerToken))
	}

	res, err := ec.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform the ESI HTTP request")
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the ESI HTTP response")
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esi response status %v %s for '%s'", res.StatusCode, res.Status, path)
	}
	return bodyBytes, nil
}

func (ec *EsiClient) makeRequestWithBackoff(method string, path string, body []byte, bearerToken string) ([]byte, error) {
	var lastErr error
	for _, backoff := range backoffSchedule {
		res, err := ec.makeRequest(method, path, body, bearerToken)
		if err == nil {
			return res, nil
		}
		lastErr = err
		ec.Logger.Sugar().Debugw("ESI request failed, backing off",
			zap.String("path", path),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		time.Sleep(backoff)
	}
	return nil, lastErr
}

func (ec *EsiClient) GetCharacter(characterId int64) (*CharacterInfo, error) {
	raw, err := ec.makeRequestWithBackoff(http.MethodGet, fmt.Sprintf("/characters/%d/", characterId), nil, "")
	if err != nil {
		return nil, err
	}
	character := &CharacterInfo{}
	if err := json.Unmarshal(raw, character); err != nil {
		return nil, errors.Wrap(err, "failed to parse character response")
	}
	return character, nil
}

func (ec *EsiClient) GetCorporation(corporationId int64) (*CorporationInfo, error) {
	raw, err := ec.makeRequestWithBackoff(http.MethodGet, fmt.Sprintf("/corporations/%d/", corporationId), nil, "")
	if err != nil {
		return nil, err
	}
	corporation := &CorporationInfo{}
	if err := json.Unmarshal(raw, corporation); err != nil {
		return nil, errors.Wrap(err, "failed to parse corporation response")
	}
	return corporation, nil
}

func (ec *EsiClient) GetAlliance(allianceId int64) (*AllianceInfo, error) {
	raw, err := ec.makeRequestWithBackoff(http.MethodGet, fmt.Sprintf("/alliances/%d/", allianceId), nil, "")
	if err != nil {
		return nil, err
	}
	alliance := &AllianceInfo{}
	if err := json.Unmarshal(raw, alliance); err != nil {
		return nil, errors.Wrap(err, "failed to parse alliance response")
	}
	return alliance, nil
}

// GetSovereigntyStructures returns the full sovereignty structure list. Callers
// filter it down to the systems they care about.
func (ec *EsiClient) GetSovereigntyStructures() ([]types.SovStructure, error) {
	raw, err := ec.makeRequestWithBackoff(http.MethodGet, "/sovereignty/structures/", nil, "")
	if err != nil {
		return nil, err
	}
	var structures []types.SovStructure
	if err := json.Unmarshal(raw, &structures); err != nil {
		return nil, errors.Wrap(err, "failed to parse sovereignty structures response")
	}
	return structures, nil
}

func (ec *EsiClient) GetNames(ids []int64) ([]types.UniverseName, error) {
	body, err := json.Marshal(ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal universe names request")
	}
	raw, err := ec.makeRequestWithBackoff(http.MethodPost, "/universe/names/", body, "")
	if err != nil {
		return nil, err
	}
	var names []types.UniverseName
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, errors.Wrap(err, "failed to parse universe names response")
	}
	return names, nil
}

func (ec *EsiClient) GetWalletJournal(characterId int64, accessToken string) ([]types.WalletEntry, error) {
	raw, err := ec.makeRequestWithBackoff(http.MethodGet, fmt.Sprintf("/characters/%d/wallet/journal/", characterId), nil, accessToken)
	if err != nil {
		return nil, err
	}
	var journal []types.WalletEntry
	if err := json.Unmarshal(raw, &journal); err != nil {
		return nil, errors.Wrap(err, "failed to parse wallet journal response")
	}
	return journal, nil
}
