package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/CodedInternet/goactsync/comms"
	. "github.com/CodedInternet/goactsync/onboard"
	"github.com/abiosoft/ishell"
	"github.com/asdine/storm"
	"github.com/caarlos0/env"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"DEVICE_UUID" envDefault:"DEV"`
	ONDEVICE   bool   `env:"ONDEVICE" envDefault:"0"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	DB         *storm.DB
	Device     *Device
	Conductor  *comms.Conductor
	Simulated  bool
}

var (
	ENV *EnvConfig
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	env.Parse(ENV)

	// get db path, this depends on if we are running on the rig itself
	var dbFile string
	if ENV.ONDEVICE {
		dbFile = "/data/live.db"
	} else {
		dbFile, _ = filepath.Abs("./tmp/dev.db")
		dir := filepath.Dir(dbFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.Mkdir(dir, 0755)
		}
	}

	db, err := openDb(dbFile)
	if err != nil {
		panic(err)
	}
	ENV.DB = db

	return
}

func main() {
	// process flags
	simulated := flag.Bool("sim", false, "Run against the simulated rig")
	port := flag.String("port", "0.0.0.0:80", "Specify the ip:port to listen on")
	diagAddr := flag.String("diag", "0.0.0.0:7700", "ip:port for the raw diagnostic echo listener")
	configFlag := flag.String("config", "", "Override the rig config file location")
	flag.Parse()

	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	defer ENV.DB.Close() // close database when finished

	filename := *configFlag
	if filename == "" {
		if ENV.ONDEVICE {
			filename = "/data/rig_config.yaml"
		} else {
			filename, _ = filepath.Abs(ENV.SRCDIR + "/rig_config.yaml")
		}
	}

	config, err := LoadConfig(filename)
	if err != nil {
		panic(fmt.Sprintf("Unable to load rig config: %v", err))
	}

	ENV.Simulated = *simulated
	device, err := NewDevice(config, ENV.Simulated)
	if err != nil {
		panic(fmt.Sprintf("Unable to initialize device: %v", err))
	}
	ENV.Device = device

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	device.Blink()
	device.Run(ctx)
	device.Controller.Activate(true)

	go device.Telemetry(ctx, os.Stdout)

	ENV.Conductor = &comms.Conductor{
		Poll:     comms.MarshalState(statePayload),
		Interval: config.Tuning.TelemetryInterval,
	}
	go ENV.Conductor.UpdateClients(ctx)

	go DiagListener(*diagAddr)

	//---
	// Create a local shell
	//---
	{
		shell := ishell.New()
		shell.Println("Actuator sync development shell")
		shell.ShowPrompt(true)
		shell.AddCmd(&ishell.Cmd{
			Name: "createsuperuser",
			Help: "createsuperuser <email> <password>",
			Func: func(c *ishell.Context) {
				// disable the '>>>' for cleaner same line input.
				c.ShowPrompt(false)
				defer c.ShowPrompt(true) // yes, revert when done.

				// get email
				var email string
				if len(c.Args) >= 1 {
					email = c.Args[0]
				} else {
					c.Print("Email: ")
					email = c.ReadLine()
				}

				// get password
				var password string
				if len(c.Args) >= 2 {
					password = c.Args[1]
				} else {
					c.Print("Password: ")
					password = c.ReadPassword()
				}

				// create user
				user := &User{
					Email: email,
					Name:  email,
					Admin: true,
				}
				user.SetPassword([]byte(password))
				err := ENV.DB.Save(user)
				if err != nil {
					panic(err)
				}

				c.Println("Superuser created")
			},
		})

		// Add device specific commands
		shell.AddCmd(&ishell.Cmd{
			Name: "move",
			Help: "move <ticks>",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("usage: move <ticks>"))
					return
				}
				pos, err := strconv.ParseInt(c.Args[0], 10, 64)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("Moving pair to %d\n", pos)
				device.Controller.SetTarget(pos)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "extend",
			Help: "Drive the pair out until stopped",
			Func: func(c *ishell.Context) {
				device.Controller.Extend()
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "retract",
			Help: "Drive the pair in until stopped",
			Func: func(c *ishell.Context) {
				device.Controller.Retract()
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "stop",
			Help: "Hold the pair at the current position",
			Func: func(c *ishell.Context) {
				device.Controller.Stop()
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "home",
			Help: "home <retract|extend>",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("usage: home <retract|extend>"))
					return
				}

				c.ProgressBar().Indeterminate(true)
				c.ProgressBar().Start()

				var err error
				switch c.Args[0] {
				case "retract":
					err = device.Controller.RetractHome(ctx)
				case "extend":
					err = device.Controller.ExtendHome(ctx)
				default:
					err = fmt.Errorf("unknown home direction %q", c.Args[0])
				}

				c.ProgressBar().Stop()

				if err != nil {
					c.Err(err)
					return
				}
				posA, posB := device.Controller.Positions()
				c.Printf("Home located. Counters now %d %d\n", posA, posB)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "state",
			Help: "Reads the current state of the device",
			Func: func(c *ishell.Context) {
				state := device.GetState()
				c.Printf("%+v\n", state)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "activate",
			Help: "activate <on|off>",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("usage: activate <on|off>"))
					return
				}
				on, err := strconv.ParseBool(c.Args[0])
				if err != nil {
					on = c.Args[0] == "on"
				}
				device.Controller.Activate(on)
				c.Printf("Control loop active: %v\n", device.Controller.Active())
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "current",
			Help: "Read the motor current sensors",
			Func: func(c *ishell.Context) {
				state := device.GetState()
				c.Printf("A: %.2fA B: %.2fA\n", state.CurrentA, state.CurrentB)
			},
		})

		// Start an instance of the shell so it can be controlled from the CLI
		go shell.Start()
	}

	//---
	// Build the API routes
	//---
	r.Route("/api", func(r chi.Router) {
		// login
		r.Post("/login", Login)
		r.Get("/health", Health)

		r.Route("/", func(r chi.Router) {
			// Seek, verify and validate JWT tokens
			r.Use(ValidateJWT)

			r.Get("/state", GetState)
			r.Get("/refresh_token", JWTRefresh)
		})
	})

	// Add websocket routes
	r.Route("/ws", func(r chi.Router) {
		if ENV.ONDEVICE && !ENV.DEBUG {
			// Enable JWT validation in production
			r.Use(ValidateJWT)
		} else {
			fmt.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/echo", EchoHandler)
		r.Get("/telemetry", TelemetryHandler)
	})

	fmt.Println("Listening on port", *port)
	if err := http.ListenAndServe(*port, r); err != nil {
		log.Fatal(err)
	}
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		return nil, err
	}

	return
}
