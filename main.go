package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"task-manager/backend/handlers"
	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Task Manager Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set in the environment variables.")
	}
	if os.Getenv("JWT_SECRET") == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	tasksCollection := client.Database(mongoDBName).Collection("tasks")
	usersCollection := client.Database(mongoDBName).Collection("users")

	dbBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MongoAggregationCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	taskService := services.NewTaskService(tasksCollection, usersCollection, dbBreaker)
	userService := services.NewUserService(usersCollection, tasksCollection)
	reportService := services.NewReportService(tasksCollection, usersCollection)

	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(userService)
	reportHandler := handlers.NewReportHandler(reportService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)

	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)

	protected.HandleFunc("/tasks/dashboard-data", taskHandler.GetDashboardData).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/user-dashboard-data", taskHandler.GetUserDashboardData).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/status/{id}", taskHandler.UpdateTaskStatus).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/checklist/{id}", taskHandler.UpdateTaskChecklist).Methods(http.MethodPut)
	protected.HandleFunc("/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	protected.HandleFunc("/users", userHandler.GetUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", userHandler.GetUserByID).Methods(http.MethodGet)

	protected.HandleFunc("/reports/export/tasks", reportHandler.ExportTasksReport).Methods(http.MethodGet)
	protected.HandleFunc("/reports/export/users", reportHandler.ExportUsersReport).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
