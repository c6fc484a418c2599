/*
Package ports defines the capabilities the story core needs from the outside
world.

These interfaces decouple the lifecycle tree from any concrete UI toolkit, so a
story can be bound to an in-memory node, a Redis key, or a real widget alike.

# Key Interfaces

  - Host: an object that can report whether it is destroyed and notify once upon destruction.
  - Listener: anything that can be released. Host subscriptions are Listeners too.

RunHostContract verifies that a Host implementation honors these rules.
*/
package ports
