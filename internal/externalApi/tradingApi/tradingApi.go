package tradingApi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/KotFed0t/sim_trading_dashboard/config"
	"github.com/KotFed0t/sim_trading_dashboard/internal/externalApi"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model"
	"github.com/KotFed0t/sim_trading_dashboard/internal/model/tradingModel"
	"github.com/KotFed0t/sim_trading_dashboard/utils"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// TradingApi talks to the simulator backend's /api endpoints.
type TradingApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *TradingApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TradingApi.Url).
		SetHeader("Accept", "application/json")
	return &TradingApi{client: client}
}

func (a *TradingApi) GetTradingPhase(ctx context.Context) (model.TradingPhase, error) {
	var resp tradingModel.PhaseResponse
	if err := a.get(ctx, "TradingApi.GetTradingPhase", "/api/trading_phase", &resp); err != nil {
		return "", err
	}
	return model.TradingPhase(resp.Phase), nil
}

// GetQuote returns externalApi.ErrNotFound when the backend answers with an
// empty object.
func (a *TradingApi) GetQuote(ctx context.Context, code string) (tradingModel.Quote, error) {
	op := "TradingApi.GetQuote"
	body, err := a.getRaw(ctx, op, "/api/stock/"+url.PathEscape(code))
	if err != nil {
		return tradingModel.Quote{}, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		slog.Error("quote body is not an object", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("op", op))
		return tradingModel.Quote{}, externalApi.ErrUnexpectedBody
	}
	if len(parsed.Map()) == 0 {
		return tradingModel.Quote{}, externalApi.ErrNotFound
	}

	quote := tradingModel.Quote{}
	if err = json.Unmarshal(body, &quote); err != nil {
		slog.Error("can't unmarshall response into tradingModel.Quote", slog.String("err", err.Error()), slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
		return tradingModel.Quote{}, fmt.Errorf("%s: %w", op, err)
	}
	return quote, nil
}

func (a *TradingApi) GetPortfolio(ctx context.Context) (tradingModel.Portfolio, error) {
	op := "TradingApi.GetPortfolio"
	rqID := utils.GetRequestIDFromCtx(ctx)

	body, err := a.getRaw(ctx, op, "/api/portfolio")
	if err != nil {
		return tradingModel.Portfolio{}, err
	}

	portfolio := tradingModel.Portfolio{}
	if err = json.Unmarshal(body, &portfolio); err != nil {
		slog.Error("can't unmarshall response into tradingModel.Portfolio", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return tradingModel.Portfolio{}, fmt.Errorf("%s: %w", op, err)
	}

	// positions is an object keyed by stock code; walk it in document order
	positions := gjson.GetBytes(body, "positions")
	if positions.IsObject() {
		positions.ForEach(func(key, value gjson.Result) bool {
			info := tradingModel.PositionInfo{}
			if err = json.Unmarshal([]byte(value.Raw), &info); err != nil {
				err = fmt.Errorf("position %s: %w", key.String(), err)
				return false
			}
			portfolio.Positions = append(portfolio.Positions, tradingModel.Position{Stock: key.String(), PositionInfo: info})
			return true
		})
		if err != nil {
			slog.Error("can't parse positions", slog.String("err", err.Error()), slog.String("rqID", rqID))
			return tradingModel.Portfolio{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return portfolio, nil
}

func (a *TradingApi) GetOrders(ctx context.Context) ([]tradingModel.Order, error) {
	var orders []tradingModel.Order
	if err := a.get(ctx, "TradingApi.GetOrders", "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (a *TradingApi) GetHistory(ctx context.Context) ([]tradingModel.Trade, error) {
	var trades []tradingModel.Trade
	if err := a.get(ctx, "TradingApi.GetHistory", "/api/history", &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (a *TradingApi) Buy(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error) {
	return a.post(ctx, "TradingApi.Buy", "/api/buy", rq)
}

func (a *TradingApi) Sell(ctx context.Context, rq tradingModel.OrderRequest) (tradingModel.ActionResult, error) {
	return a.post(ctx, "TradingApi.Sell", "/api/sell", rq)
}

func (a *TradingApi) CancelOrder(ctx context.Context, orderID string) (tradingModel.ActionResult, error) {
	return a.post(ctx, "TradingApi.CancelOrder", "/api/cancel_order", tradingModel.CancelRequest{OrderID: orderID})
}

func (a *TradingApi) get(ctx context.Context, op, path string, dst any) error {
	body, err := a.getRaw(ctx, op, path)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(body, dst); err != nil {
		slog.Error("can't unmarshall response", slog.String("op", op), slog.String("err", err.Error()), slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *TradingApi) getRaw(ctx context.Context, op, path string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	resp, err := a.client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		slog.Error("error while dialing TradingApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body := bytes.TrimSpace(resp.Body())
	if !json.Valid(body) {
		slog.Error("TradingApi returned non-JSON body", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%s: status %d: %w", op, resp.StatusCode(), externalApi.ErrUnexpectedBody)
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op))

	return body, nil
}

func (a *TradingApi) post(ctx context.Context, op, path string, payload any) (tradingModel.ActionResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.Any("payload", payload))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	if err != nil {
		slog.Error("error while dialing TradingApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return tradingModel.ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	result := tradingModel.ActionResult{}
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		slog.Error("can't unmarshall response into tradingModel.ActionResult", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return tradingModel.ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("success", result.Success))

	return result, nil
}
