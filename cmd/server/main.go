package main

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"parkinglot/internal/api"
	"parkinglot/internal/auth"
	"parkinglot/internal/lot"
	"parkinglot/internal/pricing"
	"parkinglot/internal/repository"
	"parkinglot/internal/service"
	"parkinglot/internal/subscription"
)

func main() {
	godotenv.Load()

	lotName := os.Getenv("LOT_NAME")
	if lotName == "" {
		lotName = "City Center Parking"
	}
	totalSpots := 100
	if v := os.Getenv("LOT_SPOTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid LOT_SPOTS %q", v)
		}
		totalSpots = n
	}

	// State persistence is optional; without DATABASE_URL the lot runs
	// purely in memory.
	var store *repository.SnapshotRepository
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatalf("Failed to open DB: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		store = repository.NewSnapshotRepository(db)
		if err := store.Init(); err != nil {
			log.Fatalf("Failed to init snapshot table: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set; state persistence disabled")
	}

	parkingLot := lot.New(lotName, totalSpots)
	pricingMgr := pricing.NewManager()
	subscriptionMgr := subscription.NewManager(pricingMgr)
	notifier := service.NewNotifier()

	svc := service.NewParkingService(parkingLot, pricingMgr, subscriptionMgr, notifier, store)
	if store != nil {
		if err := svc.LoadState(); err != nil {
			if errors.Is(err, repository.ErrNoSnapshot) {
				log.Printf("No saved state; starting fresh lot %q with %d spots", lotName, totalSpots)
			} else {
				log.Fatalf("Failed to load saved state: %v", err)
			}
		} else {
			log.Println("Restored lot state from last snapshot")
		}
	}

	jobs := service.NewJobService(svc)
	c := cron.New()
	if _, err := c.AddFunc("@every 5m", jobs.CompleteExpiredReservations); err != nil {
		log.Fatalf("Failed to schedule reservation sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	userHandler := api.NewUserHandler(svc)
	adminHandler := api.NewAdminHandler(svc)
	authHandler := api.NewAdminAuthHandler(service.NewAuthService())

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/parking/checkin", userHandler.CheckIn).Methods("POST")
	r.HandleFunc("/parking/checkout/{plate}", userHandler.PrepareCheckout).Methods("POST")
	r.HandleFunc("/parking/checkout/{plate}/pay", userHandler.FinalizeCheckout).Methods("POST")
	r.HandleFunc("/parking/reservations", userHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/parking/reservations/use", userHandler.UseReservation).Methods("POST")
	r.HandleFunc("/parking/reservations/{plate}", userHandler.CancelReservation).Methods("DELETE")
	r.HandleFunc("/parking/availability/{spot_type}", userHandler.Availability).Methods("GET")
	r.HandleFunc("/parking/prices", userHandler.Prices).Methods("GET")
	r.HandleFunc("/parking/subscriptions", userHandler.Subscribe).Methods("POST")
	r.HandleFunc("/parking/subscriptions/{plate}", userHandler.CancelSubscription).Methods("DELETE")
	r.HandleFunc("/parking/subscriptions/{plate}/renew", userHandler.RenewSubscription).Methods("POST")

	r.HandleFunc("/admin/login", authHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/reservations", adminHandler.ActiveReservations).Methods("GET")
	admin.HandleFunc("/transactions", adminHandler.Transactions).Methods("GET")
	admin.HandleFunc("/subscriptions", adminHandler.Subscriptions).Methods("GET")
	admin.HandleFunc("/sessions", adminHandler.Sessions).Methods("GET")
	admin.HandleFunc("/spots/{id}", adminHandler.Spot).Methods("GET")
	admin.HandleFunc("/state/save", adminHandler.SaveState).Methods("POST")
	admin.HandleFunc("/state/load", adminHandler.LoadState).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Lot %q with %d spots; server running on port %s", lotName, totalSpots, port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
