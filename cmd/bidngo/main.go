package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/bidngo-client/internal/auth"
	"github.com/example/bidngo-client/internal/client"
	"github.com/example/bidngo-client/internal/config"
	"github.com/example/bidngo-client/internal/geocode"
	"github.com/example/bidngo-client/internal/logging"
	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
	"github.com/example/bidngo-client/internal/watch"
)

const usage = `usage: bidngo <command> [args]

  login <email> <password>      authenticate and store the token
  logout                        drop the stored token
  whoami                        show the locally decoded session
  trips                         list all trips
  my-trips                      list trips owned by the logged-in driver
  trip <id>                     show one trip
  search <from> <to>            search trips ("lat,lng" or address with geocoding)
  bids <trip-id>                list bids on a trip
  my-bids                       list own bids
  bid <trip-id> <price> [pickup]  place a bid
  update-bid <bid-id> <price>   update a bid's price
  withdraw-bid <bid-id>         withdraw a bid
  confirm <trip-id> <bid-id>    accept a bid (driver)
  bookings                      list own bookings
  watch <trip-id>               stream merged live bid state for a trip
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		fatal(err)
	}
	logger := logging.NewLogger(cfg.LogLevel)
	tokens := auth.NewFileStore(cfg.TokenPath)
	api := client.New(cfg, tokens, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, api, args); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, cfg config.ClientConfig, api *client.Client, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		resp, err := api.Login(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	case "logout":
		return api.Logout()
	case "whoami":
		claims, err := api.Session()
		if err != nil {
			return err
		}
		if claims == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s <%s> (%s, id=%d)\n", claims.Name, claims.Email, claims.Role, claims.UserID)
		return nil
	case "trips":
		trips, err := api.Trips(ctx)
		if err != nil {
			return err
		}
		printTrips(trips)
		return nil
	case "my-trips":
		trips, err := api.MyTrips(ctx)
		if err != nil {
			return err
		}
		printTrips(trips)
		return nil
	case "trip":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		t, err := api.Trip(ctx, id)
		if err != nil {
			return err
		}
		printTrips([]models.Trip{t})
		return nil
	case "search":
		if len(rest) != 2 {
			return fmt.Errorf("search needs <from> <to>")
		}
		return searchTrips(ctx, cfg, api, rest[0], rest[1])
	case "bids":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		bids, err := api.TripBids(ctx, id)
		if err != nil {
			return err
		}
		printBids(bids)
		return nil
	case "my-bids":
		bids, err := api.MyBids(ctx)
		if err != nil {
			return err
		}
		printBids(bids)
		return nil
	case "bid":
		if len(rest) < 2 {
			return fmt.Errorf("bid needs <trip-id> <price> [pickup]")
		}
		tripID, err := argID(rest, 0)
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return fmt.Errorf("bad price: %w", err)
		}
		req := models.BidCreate{TripID: tripID, Price: price}
		if len(rest) > 2 {
			p, err := resolvePlace(ctx, cfg, rest[2])
			if err != nil {
				return err
			}
			req.Pickup = p
		}
		b, err := api.PlaceBid(ctx, req)
		if err != nil {
			return err
		}
		printBids([]models.Bid{b})
		return nil
	case "update-bid":
		if len(rest) != 2 {
			return fmt.Errorf("update-bid needs <bid-id> <price>")
		}
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return fmt.Errorf("bad price: %w", err)
		}
		b, err := api.UpdateBid(ctx, id, models.BidUpdate{Price: price})
		if err != nil {
			return err
		}
		printBids([]models.Bid{b})
		return nil
	case "withdraw-bid":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		return api.WithdrawBid(ctx, id)
	case "confirm":
		if len(rest) != 2 {
			return fmt.Errorf("confirm needs <trip-id> <bid-id>")
		}
		tripID, err := argID(rest, 0)
		if err != nil {
			return err
		}
		bidID, err := argID(rest, 1)
		if err != nil {
			return err
		}
		bk, err := api.ConfirmBid(ctx, tripID, bidID)
		if err != nil {
			return err
		}
		fmt.Printf("booking %d: trip=%d fare=%.2f status=%s payment=%s\n",
			bk.ID, bk.TripID, bk.Fare, bk.Status, bk.PaymentStatus)
		return nil
	case "bookings":
		bks, err := api.MyBookings(ctx)
		if err != nil {
			return err
		}
		for _, bk := range bks {
			fmt.Printf("booking %d: trip=%d fare=%.2f status=%s payment=%s\n",
				bk.ID, bk.TripID, bk.Fare, bk.Status, bk.PaymentStatus)
		}
		return nil
	case "watch":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		return watchTrip(ctx, cfg, api, id)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func watchTrip(ctx context.Context, cfg config.ClientConfig, api *client.Client, tripID int64) error {
	logger := logging.NewLogger(cfg.LogLevel)
	channel := stream.NewChannel(cfg.WSURL, logger)
	defer channel.Close()

	w := watch.New(tripID, api, channel, watch.Options{
		Interval: cfg.PollInterval,
		Limiter:  rate.NewLimiter(rate.Limit(cfg.PollRatePerS), 1),
		Logger:   logger,
	})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-ticker.C:
			fmt.Printf("-- %s [%s] --\n", time.Now().Format(time.TimeOnly), channel.State())
			printBids(w.Snapshot())
		}
	}
}

func searchTrips(ctx context.Context, cfg config.ClientConfig, api *client.Client, from, to string) error {
	start, err := resolvePlace(ctx, cfg, from)
	if err != nil {
		return err
	}
	end, err := resolvePlace(ctx, cfg, to)
	if err != nil {
		return err
	}
	trips, err := api.SearchTrips(ctx, models.TripSearch{Start: start, End: end})
	if err != nil {
		return err
	}
	dist := geocode.StraightLine(start, end) / 1000
	eta := time.Duration(geocode.EstimateSeconds(start, end, cfg.DefaultSpeedMps)) * time.Second
	fmt.Printf("route ~%.1f km (~%s straight line)\n", dist, eta)
	printTrips(trips)
	return nil
}

// resolvePlace accepts either "lat,lng" or a free-text address, the latter
// only when a geocoding endpoint is configured.
func resolvePlace(ctx context.Context, cfg config.ClientConfig, s string) (models.Place, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLng == nil {
			return models.Place{Lat: lat, Lng: lng, Address: s}, nil
		}
	}
	if cfg.GeocodeEndpoint == "" {
		return models.Place{}, fmt.Errorf("%q is not lat,lng and no BIDNGO_GEOCODE_ENDPOINT is set", s)
	}
	gc := geocode.NewClient(cfg.GeocodeEndpoint, 10*time.Minute)
	return gc.Geocode(ctx, s)
}

func printTrips(trips []models.Trip) {
	for _, t := range trips {
		fmt.Printf("trip %d: %s -> %s at %s, %d seats, base %.2f (driver %d)\n",
			t.ID, t.OriginAddr, t.DestAddr, t.DepartureTime.Format(time.RFC3339), t.Seats, t.BasePrice, t.DriverUserID)
	}
}

func printBids(bids []models.Bid) {
	for _, b := range bids {
		fmt.Printf("bid %d: trip=%d user=%d price=%.2f status=%s updated=%s\n",
			b.ID, b.TripID, b.UserID, b.Price, b.Status, b.UpdatedAt.Format(time.RFC3339))
	}
}

func argID(args []string, i int) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing id argument")
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", args[i], err)
	}
	return id, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "bidngo:", err)
	os.Exit(1)
}
